package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/onewire"
)

// Address is an 8-byte 1-Wire ROM code in bus order.
//
//	[FAMILY][SERIAL(6), LSB first][CRC-8 of bytes 0..6]
//
// Address is a value type; binding copies it.
type Address [AddressSize]byte

// NewAddress builds an address from a family id and a serial number given
// LSB first, filling in the CRC byte.
func NewAddress(familyID byte, serial [SerialSize]byte) Address {
	var a Address
	a[0] = familyID
	copy(a[1:7], serial[:])
	a[7] = CRC8(a[:7])
	return a
}

// FamilyID returns the chip family code.
func (a Address) FamilyID() byte {
	return a[0]
}

// Serial returns the 48-bit serial number field, LSB first.
func (a Address) Serial() [SerialSize]byte {
	var s [SerialSize]byte
	copy(s[:], a[1:7])
	return s
}

// CRC returns the checksum byte carried by the address.
func (a Address) CRC() byte {
	return a[7]
}

// ValidChecksum reports whether the CRC-8 of bytes 0..6 equals byte 7.
func (a Address) ValidChecksum() bool {
	return CRC8(a[:7]) == a[7]
}

// IsZero reports whether no address has been assigned.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String formats the address the way the Linux w1 subsystem names devices:
// family, a dash, then the serial number most significant byte first.
func (a Address) String() string {
	return fmt.Sprintf("%02x-%02x%02x%02x%02x%02x%02x", a[0], a[6], a[5], a[4], a[3], a[2], a[1])
}

// Hex returns all 8 bytes in bus order as upper-case hex digits.
func (a Address) Hex() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// OneWire converts the address to the periph.io representation,
// which keeps the family code in the least significant byte.
func (a Address) OneWire() onewire.Address {
	return onewire.Address(binary.LittleEndian.Uint64(a[:]))
}

// FromOneWire converts a periph.io address into bus order.
func FromOneWire(oa onewire.Address) Address {
	var a Address
	binary.LittleEndian.PutUint64(a[:], uint64(oa))
	return a
}

// ParseAddress parses an address in one of two forms:
//
//	"09-bc9a78563412"          w1 device name, CRC computed
//	"09 12 34 56 78 9A BC 5B"  8 bytes in bus order
//
// The bus-order form accepts ':', '-', '.' and spaces between digits.
// The CRC byte is not checked; use ValidChecksum.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)

	if len(s) == 15 && s[2] == '-' {
		fam, err := hex.DecodeString(s[:2])
		if err != nil {
			return Address{}, fmt.Errorf("invalid family id %q: %w", s[:2], err)
		}
		sn, err := hex.DecodeString(s[3:])
		if err != nil {
			return Address{}, fmt.Errorf("invalid serial number %q: %w", s[3:], err)
		}
		var serial [SerialSize]byte
		for i := range serial {
			serial[i] = sn[SerialSize-1-i]
		}
		return NewAddress(fam[0], serial), nil
	}

	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.', ' ', '\t':
			return -1
		}
		return r
	}, s)

	if len(clean) != AddressSize*2 {
		return Address{}, fmt.Errorf("invalid address length: got %d hex digits, expected %d", len(clean), AddressSize*2)
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Address{}, fmt.Errorf("invalid hex data: %w", err)
	}

	var a Address
	copy(a[:], raw)
	return a, nil
}
