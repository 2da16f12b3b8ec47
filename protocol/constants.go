package protocol

import "time"

// ProtocolVersion is the driver protocol revision implemented by this library.
const ProtocolVersion = "1.3"

// ROM layout of a 1-Wire bus address.
const (
	// AddressSize is the size of a bus address in bytes:
	// FAMILY(1) + SERIAL(6) + CRC(1)
	AddressSize = 8

	// SerialSize is the size of the serial number field
	SerialSize = 6
)

// Memory function commands understood by the supported chips.
const (
	// CmdReadStatus reads the status memory (EPROM) or the scratchpad (EEPROM)
	CmdReadStatus = 0xAA

	// CmdVerifyResume is the DS2430 copy-scratchpad validation key
	CmdVerifyResume = 0xA5

	// CmdWriteStatus writes the status memory (EPROM) or commits the scratchpad (EEPROM)
	CmdWriteStatus = 0x55

	// CmdReadMemory reads main memory
	CmdReadMemory = 0xF0

	// CmdReadMemoryCRC reads main memory with a trailing page CRC.
	// Reserved; the driver does not issue it.
	CmdReadMemoryCRC = 0xC3

	// CmdWriteMemory writes EPROM memory or the EEPROM scratchpad
	CmdWriteMemory = 0x0F
)

// Page geometry shared by every supported chip.
const (
	// PageSize is the number of bytes in a memory page
	PageSize = 32

	// ScratchChunkSize is the number of bytes staged per EEPROM scratch write
	ScratchChunkSize = 8

	// AuthCodeSize is the size of the scratchpad authorization code (TA1, TA2, E/S)
	AuthCodeSize = 3
)

// Marker bytes returned or written by the chips.
const (
	// NoRedirect is the EPROM redirection byte value meaning "use the computed address"
	NoRedirect = 0xFF

	// CopySuccess is the status byte an EEPROM reports after a completed copy
	CopySuccess = 0xAA

	// WriteProtect is the byte written to an EEPROM protection register to lock a page
	WriteProtect = 0x55
)

// Hardware-mandated timing.
const (
	// ProgramPulseWidth is how long the programming pin is held high per EPROM burn
	ProgramPulseWidth = 500 * time.Microsecond

	// ProgramSettleDelay is the wait after every pulse window, pin or no pin
	ProgramSettleDelay = 500 * time.Microsecond

	// CopyDelay is the time an EEPROM needs to copy its scratchpad to memory
	CopyDelay = 10 * time.Millisecond
)
