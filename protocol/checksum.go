package protocol

import "periph.io/x/conn/v3/onewire"

// CRC8 computes the Dallas/Maxim CRC-8 (X^8 + X^5 + X^4 + 1) of data.
// The same CRC protects bus addresses and the command echoes of EPROM chips.
func CRC8(data []byte) byte {
	return onewire.CalcCRC(data)
}

// CheckCRC8 reports whether the last byte of data is the CRC-8 of the
// bytes before it. A slice shorter than two bytes never checks.
func CheckCRC8(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return CRC8(data[:len(data)-1]) == data[len(data)-1]
}
