package sim

import (
	"sync"

	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// EEPROM models the DS2430, DS2431 and DS2433.
//
// Writes land in a scratchpad; a copy command authorized by the scratchpad
// address and ending offset commits them to memory once the master drops the
// strong pull-up. The row after the data pages holds protection registers;
// chips with an authorization echo refuse to copy into a page whose register
// reads 0x55.
type EEPROM struct {
	mu      sync.Mutex
	addr    protocol.Address
	desc    *protocol.DeviceDescriptor
	mem     []byte
	scratch []byte

	ta      uint16
	es      byte
	written int
	staged  bool

	st          state
	opcode      byte
	ptr         uint16
	out         []byte
	auth        []byte
	copyPending bool
	copyStatus  byte

	corruptScratch bool
	failCopy       bool
	copies         int
}

// NewEEPROM returns an erased EEPROM.
func NewEEPROM(addr protocol.Address, desc *protocol.DeviceDescriptor) *EEPROM {
	size := protocol.PageSize
	if desc.FamilyID == 0x2D {
		size = protocol.ScratchChunkSize
	}
	return &EEPROM{
		addr:       addr,
		desc:       desc,
		mem:        blank(desc.Size() + protocol.PageSize),
		scratch:    blank(size),
		copyStatus: 0xFF,
	}
}

func (e *EEPROM) Address() protocol.Address { return e.addr }

func (e *EEPROM) Descriptor() *protocol.DeviceDescriptor { return e.desc }

// Memory returns a copy of data memory followed by the protection row.
func (e *EEPROM) Memory() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.mem...)
}

// SetMemory overwrites memory starting at addr.
func (e *EEPROM) SetMemory(addr uint16, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	copy(e.mem[addr:], data)
}

// CorruptScratchpad flips the first data byte of every scratchpad read-back.
func (e *EEPROM) CorruptScratchpad(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.corruptScratch = on
}

// FailCopies makes every copy command fail.
func (e *EEPROM) FailCopies(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failCopy = on
}

// Copies returns the number of completed scratchpad copies.
func (e *EEPROM) Copies() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copies
}

func (e *EEPROM) mask() uint16 {
	return uint16(len(e.scratch) - 1)
}

func (e *EEPROM) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commit()
	e.st = stCommand
	e.out = nil
	e.auth = nil
}

func (e *EEPROM) Depower() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commit()
}

func (e *EEPROM) Write(b byte, _ onewire.Pullup) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.st {
	case stCommand:
		e.opcode = b
		switch b {
		case protocol.CmdReadMemory, protocol.CmdWriteMemory:
			e.st = stAddrLo
		case protocol.CmdReadStatus:
			e.readScratchpad()
		case protocol.CmdWriteStatus:
			e.auth = e.auth[:0]
			e.st = stAuth
		default:
			e.st = stIgnore
		}

	case stAddrLo:
		e.ptr = uint16(b)
		e.st = stAddrHi

	case stAddrHi:
		e.ptr |= uint16(b) << 8
		if e.opcode == protocol.CmdReadMemory {
			e.st = stStream
			return
		}
		e.ta = e.ptr
		e.written = 0
		e.staged = false
		e.st = stScratchData

	case stScratchData:
		off := int(e.ta&e.mask()) + e.written
		if off < len(e.scratch) {
			e.scratch[off] = b
			e.es = byte(off)
			e.written++
			e.staged = true
		}

	case stAuth:
		e.auth = append(e.auth, b)
		need := 1
		if e.desc.HasAuthEcho {
			need = protocol.AuthCodeSize
		}
		if len(e.auth) == need {
			e.authorize()
			e.st = stCopy
		}
	}
}

func (e *EEPROM) readScratchpad() {
	start := int(e.ta & e.mask())
	data := append([]byte(nil), e.scratch[start:int(e.es)+1]...)
	if e.corruptScratch && len(data) > 0 {
		data[0] ^= 0xFF
	}
	e.out = append([]byte{byte(e.ta), byte(e.ta >> 8), e.es}, data...)
	e.st = stStream
	e.ptr = uint16(len(e.mem))
}

func (e *EEPROM) authorize() {
	e.copyStatus = 0xFF
	if !e.staged || e.failCopy {
		return
	}
	if e.desc.HasAuthEcho {
		want := []byte{byte(e.ta), byte(e.ta >> 8), e.es}
		for i := range want {
			if e.auth[i] != want[i] {
				return
			}
		}
		page := int(e.ta) / protocol.PageSize
		if e.desc.ValidPage(page) && protocol.IsProtectByte(e.mem[e.desc.ProtectAddress(page)]) {
			return
		}
	} else if e.auth[0] != protocol.CmdVerifyResume {
		return
	}
	e.copyPending = true
}

func (e *EEPROM) commit() {
	if !e.copyPending {
		return
	}
	base := int(e.ta &^ e.mask())
	for i := int(e.ta & e.mask()); i <= int(e.es); i++ {
		if base+i < len(e.mem) {
			e.mem[base+i] = e.scratch[i]
		}
	}
	e.copyPending = false
	e.staged = false
	e.copies++
	e.copyStatus = protocol.CopySuccess
}

func (e *EEPROM) Read() byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.st {
	case stStream:
		if len(e.out) > 0 {
			v := e.out[0]
			e.out = e.out[1:]
			return v
		}
		v := byte(0xFF)
		if int(e.ptr) < len(e.mem) {
			v = e.mem[e.ptr]
		}
		e.ptr++
		return v

	case stCopy:
		e.commit()
		return e.copyStatus
	}
	return 0xFF
}
