package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NewError("read page", CodeCRCMismatch, 3, &CRCError{
		Command:  BuildReadMemoryCmd(0x60),
		Expected: 0x12,
		Actual:   0x34,
	})

	msg := err.Error()
	assert.Contains(t, msg, "read page 3")
	assert.Contains(t, msg, "crc mismatch")
	assert.Contains(t, msg, "expected crc 0x12, got 0x34")
	assert.Contains(t, msg, "(-1)")

	assert.Equal(t, "search: device disconnected (-127)", NewError("search", CodeDeviceDisconnected, -1, nil).Error())
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("program: %w", NewError("write page", CodeCopyFailure, 1, nil))

	assert.True(t, errors.Is(err, ErrCopyFailure))
	assert.False(t, errors.Is(err, ErrCRCMismatch))
	assert.Equal(t, CodeCopyFailure, CodeOf(err))
	assert.True(t, IsProtocolError(err))
}

func TestErrorUnwrap(t *testing.T) {
	inner := &CRCError{Expected: 1, Actual: 2}
	err := NewError("lock page", CodeCRCMismatch, 0, inner)

	var crcErr *CRCError
	assert.True(t, errors.As(err, &crcErr))
	assert.Same(t, inner, crcErr)
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, Code(0), CodeOf(nil))
	assert.Equal(t, Code(0), CodeOf(errors.New("boom")))
	assert.False(t, IsProtocolError(errors.New("boom")))
}

func TestCodeValues(t *testing.T) {
	tests := []struct {
		code      Code
		value     int
		name      string
		retriable bool
	}{
		{CodeCRCMismatch, -1, "crc mismatch", true},
		{CodeInvalidPage, -2, "invalid page", false},
		{CodePageLocked, -3, "page locked", false},
		{CodeBadIntegrity, -4, "bad integrity", true},
		{CodeCopyFailure, -5, "copy failure", true},
		{CodeUnsupportedDevice, -64, "unsupported device", false},
		{CodeDeviceDisconnected, -127, "device disconnected", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, int(tt.code))
			assert.Equal(t, tt.name, tt.code.String())
			assert.Equal(t, tt.retriable, tt.code.Retriable())
		})
	}

	assert.Equal(t, "unknown code 7", Code(7).String())
}
