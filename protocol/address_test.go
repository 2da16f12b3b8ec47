package protocol

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressValidChecksum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		var a Address
		rng.Read(a[:])

		want := referenceCRC8(a[:7]) == a[7]
		assert.Equal(t, want, a.ValidChecksum(), "address % X", a[:])

		// Boundary: the correct CRC always validates, every other value never does.
		a[7] = referenceCRC8(a[:7])
		assert.True(t, a.ValidChecksum())
		a[7]++
		assert.False(t, a.ValidChecksum())
	}
}

func TestNewAddress(t *testing.T) {
	a := NewAddress(0x09, [SerialSize]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC})

	assert.Equal(t, byte(0x09), a.FamilyID())
	assert.Equal(t, [SerialSize]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}, a.Serial())
	assert.True(t, a.ValidChecksum())
	assert.Equal(t, referenceCRC8(a[:7]), a.CRC())
	assert.False(t, a.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestAddressString(t *testing.T) {
	a := NewAddress(0x2D, [SerialSize]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06})
	assert.Equal(t, "2d-060504030201", a.String())
}

func TestParseAddress(t *testing.T) {
	ref := NewAddress(0x09, [SerialSize]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC})

	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr bool
		errMsg  string
	}{
		{name: "bus order compact", input: ref.Hex(), want: ref},
		{name: "bus order spaced", input: "09 12 34 56 78 9A BC " + ref.Hex()[14:], want: ref},
		{name: "bus order colons", input: "09:12:34:56:78:9a:bc:" + ref.Hex()[14:], want: ref},
		{name: "w1 device name", input: "09-bc9a78563412", want: ref},
		{name: "too short", input: "0912", wantErr: true, errMsg: "invalid address length"},
		{name: "not hex", input: "zz12345678 9ABC00", wantErr: true, errMsg: "invalid hex data"},
		{name: "bad w1 serial", input: "09-bc9a7856341z", wantErr: true, errMsg: "invalid serial number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAddressKeepsBadCRC(t *testing.T) {
	a, err := ParseAddress("0912345678 9ABC00")
	require.NoError(t, err)
	assert.False(t, a.ValidChecksum())
}

func TestAddressOneWireConversion(t *testing.T) {
	a := NewAddress(0x23, [SerialSize]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})

	oa := a.OneWire()
	assert.Equal(t, uint64(0x23), uint64(oa)&0xFF, "family code must be the low byte")
	assert.Equal(t, a, FromOneWire(oa))
}
