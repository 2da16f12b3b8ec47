package protocol

import "fmt"

// Command is one memory function command as it travels on the bus.
// Commands are built per exchange and never retained.
//
// Frame structure:
//
//	[OPCODE][ADDR_L][ADDR_H][PAYLOAD...]   addressed commands
//	[OPCODE][PAYLOAD...]                   copy/commit commands
type Command struct {
	// Opcode is the memory function command byte
	Opcode byte

	// Address is the target memory or status address, sent little-endian
	Address uint16

	// Addressed is false for commands that carry no target address
	Addressed bool

	// Payload follows the address on the wire
	Payload []byte
}

// AddressLow returns the low byte of the target address (TA1).
func (c Command) AddressLow() byte {
	return byte(c.Address)
}

// AddressHigh returns the high byte of the target address (TA2).
func (c Command) AddressHigh() byte {
	return byte(c.Address >> 8)
}

// Bytes renders the command in wire order.
func (c Command) Bytes() []byte {
	frame := make([]byte, 0, 3+len(c.Payload))
	frame = append(frame, c.Opcode)
	if c.Addressed {
		frame = append(frame, c.AddressLow(), c.AddressHigh())
	}
	return append(frame, c.Payload...)
}

// CRC returns the CRC-8 an EPROM echoes after receiving the command.
func (c Command) CRC() byte {
	return CRC8(c.Bytes())
}

func (c Command) String() string {
	if c.Addressed {
		return fmt.Sprintf("cmd=0x%02X addr=0x%04X payload=% X", c.Opcode, c.Address, c.Payload)
	}
	return fmt.Sprintf("cmd=0x%02X payload=% X", c.Opcode, c.Payload)
}

// BuildReadMemoryCmd constructs a Read Memory command starting at addr.
func BuildReadMemoryCmd(addr uint16) Command {
	return Command{Opcode: CmdReadMemory, Address: addr, Addressed: true}
}

// BuildReadStatusCmd constructs a Read Status command starting at addr.
// On EEPROM chips the same opcode reads the scratchpad and carries no address;
// see BuildReadScratchpadCmd.
func BuildReadStatusCmd(addr uint16) Command {
	return Command{Opcode: CmdReadStatus, Address: addr, Addressed: true}
}

// BuildReadScratchpadCmd constructs the EEPROM Read Scratchpad command.
func BuildReadScratchpadCmd() Command {
	return Command{Opcode: CmdReadStatus}
}

// BuildWriteMemoryCmd constructs a Write Memory command. For EPROM chips the
// payload is the first data byte; for EEPROM chips it is the scratchpad data.
func BuildWriteMemoryCmd(addr uint16, payload []byte) (Command, error) {
	if len(payload) == 0 {
		return Command{}, fmt.Errorf("payload cannot be empty")
	}
	if len(payload) > PageSize {
		return Command{}, fmt.Errorf("payload length %d exceeds maximum %d bytes", len(payload), PageSize)
	}
	return Command{Opcode: CmdWriteMemory, Address: addr, Addressed: true, Payload: payload}, nil
}

// BuildWriteStatusCmd constructs an EPROM Write Status command carrying one data byte.
func BuildWriteStatusCmd(addr uint16, data byte) Command {
	return Command{Opcode: CmdWriteStatus, Address: addr, Addressed: true, Payload: []byte{data}}
}

// BuildCopyScratchpadCmd constructs the EEPROM Copy Scratchpad command
// authorized by the code read back from the scratchpad.
func BuildCopyScratchpadCmd(auth [AuthCodeSize]byte) Command {
	return Command{Opcode: CmdWriteStatus, Payload: auth[:]}
}

// BuildVerifyResumeCmd constructs the DS2430 Copy Scratchpad command,
// which takes the fixed validation key instead of an authorization code.
func BuildVerifyResumeCmd() Command {
	return Command{Opcode: CmdWriteStatus, Payload: []byte{CmdVerifyResume}}
}
