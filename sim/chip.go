package sim

import (
	"fmt"

	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// command parser states shared by the chip models
type state int

const (
	stCommand state = iota
	stAddrLo
	stAddrHi
	stStream
	stWriteData
	stWriteEcho
	stWriteReadback
	stScratchData
	stAuth
	stCopy
	stIgnore
)

// Chip is a simulated memory chip from the device registry.
type Chip interface {
	Device

	// Descriptor returns the registry entry the chip models
	Descriptor() *protocol.DeviceDescriptor

	// Memory returns a copy of the data memory, including any
	// protection registers that follow the data pages
	Memory() []byte

	// SetMemory overwrites memory starting at addr, bypassing the protocol
	SetMemory(addr uint16, data []byte)
}

// NewChip builds the chip model registered for the address family.
func NewChip(addr protocol.Address) (Chip, error) {
	desc, ok := protocol.LookupAddress(addr)
	if !ok {
		return nil, fmt.Errorf("family 0x%02X is not a supported memory chip", addr.FamilyID())
	}
	if desc.IsEPROM() {
		return NewEPROM(addr, desc), nil
	}
	return NewEEPROM(addr, desc), nil
}

// Stranger is a device of an unsupported family. It answers presence and
// search but ignores every command.
type Stranger struct {
	addr protocol.Address
}

// NewStranger returns a silent device at addr.
func NewStranger(addr protocol.Address) *Stranger {
	return &Stranger{addr: addr}
}

func (s *Stranger) Address() protocol.Address { return s.addr }
func (s *Stranger) Reset() {}
func (s *Stranger) Write(byte, onewire.Pullup) {}
func (s *Stranger) Read() byte { return 0xFF }
func (s *Stranger) Depower() {}

func blank(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xFF
	}
	return b
}
