// Package protocol implements the memory function protocol of Dallas/Maxim
// 1-Wire EPROM and EEPROM chips.
//
// This package provides the device registry, bus addresses, the CRC-8 used
// for address and command verification, command framing, and the closed
// error taxonomy shared by the driver.
//
// # Protocol Overview
//
// Every exchange starts with a bus reset and a ROM select, followed by a
// memory function command:
//
//	[OPCODE][ADDR_L][ADDR_H][PAYLOAD...]
//
// EPROM chips (DS2502, DS2505) answer addressed commands with the CRC-8 of
// the command bytes. EEPROM chips (DS2430, DS2431, DS2433) do not; they
// stage writes in a scratchpad that is read back and committed.
//
// # Registry
//
//	desc, ok := protocol.Lookup(0x2D)
//	// desc.Name == "DS2431", desc.PageCount == 4
//
// # Addresses
//
//	addr, err := protocol.ParseAddress("09 12 34 56 78 9A BC 5B")
//	if !addr.ValidChecksum() {
//	    // reject
//	}
//
// # Error Handling
//
// Failures are *Error values carrying a Code. Use errors.Is with the
// sentinels or CodeOf:
//
//	if errors.Is(err, protocol.ErrCRCMismatch) {
//	    // retry
//	}
//
// # Reference
//
// DS2502, DS2505, DS2430A, DS2431 and DS2433 data sheets; Maxim application
// note 27 for the CRC-8.
package protocol
