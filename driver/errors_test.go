package driver

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/moffa90/go-w1eprom/protocol"
)

func TestBurnError(t *testing.T) {
	err := &BurnError{Page: 2, Offset: 5, Address: 0x45, Want: 0x00, Got: 0xFF}

	errMsg := err.Error()

	for _, want := range []string{"page 2", "offset 5", "0x0045", "wrote 0x00", "read 0xFF"} {
		if !strings.Contains(errMsg, want) {
			t.Errorf("error message should contain %q, got: %s", want, errMsg)
		}
	}
}

func TestIntegrityError(t *testing.T) {
	err := &IntegrityError{Address: 0x88, Want: 0x12, Got: 0xED}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "scratchpad mismatch at 0x0088") {
		t.Errorf("error message should contain address, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "staged 0x12, read 0xED") {
		t.Errorf("error message should contain both bytes, got: %s", errMsg)
	}
}

func TestCopyStatusError(t *testing.T) {
	err := &CopyStatusError{Address: 0x20, Status: 0xFF}

	if got, want := err.Error(), "copy of 0x0020 returned status 0xFF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPulseError(t *testing.T) {
	cause := errors.New("pin busy")
	err := &PulseError{Err: cause}

	if !strings.Contains(err.Error(), "pin busy") {
		t.Errorf("error message should contain cause, got: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestFamilyMismatchError(t *testing.T) {
	err := &FamilyMismatchError{Expected: 0x2D, Actual: 0x23}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "family mismatch") {
		t.Errorf("error message should contain 'family mismatch', got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "0x2D") || !strings.Contains(errMsg, "0x23") {
		t.Errorf("error message should contain both families, got: %s", errMsg)
	}
}

func TestPageOutOfRangeError(t *testing.T) {
	err := &PageOutOfRangeError{Page: 9, MaxPage: 3}

	errMsg := err.Error()

	if !strings.Contains(errMsg, "page 9") {
		t.Errorf("error message should contain page number, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "0-3") {
		t.Errorf("error message should contain range, got: %s", errMsg)
	}
}

func TestVerificationError(t *testing.T) {
	err := &VerificationError{Page: 1, Reason: "offset 0: wrote 0x09, read 0xFF"}

	if got, want := err.Error(), "page 1 verification failed: offset 0: wrote 0x09, read 0xFF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsBurnFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"copy status", protocol.NewError("write page", protocol.CodeCopyFailure, 0, &CopyStatusError{}), false},
		{"burn", protocol.NewError("write page", protocol.CodeCopyFailure, 0, &BurnError{}), true},
		{"wrapped burn", fmt.Errorf("program page 0: %w",
			protocol.NewError("write page", protocol.CodeCopyFailure, 0, &BurnError{})), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBurnFailure(tt.err); got != tt.want {
				t.Errorf("IsBurnFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}
