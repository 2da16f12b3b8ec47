package sim

import (
	"sync"

	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// EPROM models a DS2502/DS2505 one-time programmable chip.
//
// Data memory starts erased (0xFF) and programming can only clear bits.
// The status memory holds write-protect bytes at LockBase, where a set bit
// marks a locked page, and redirection bytes at RedirectBase, which start
// at 0xFF (no redirection). Every addressed command is answered with the
// CRC-8 of the command bytes.
type EPROM struct {
	mu     sync.Mutex
	addr   protocol.Address
	desc   *protocol.DeviceDescriptor
	mem    []byte
	status []byte

	st     state
	cmd    []byte
	ptr    uint16
	space  []byte
	out    []byte
	data   byte
	echoOK bool

	corruptEchoes int
	burnFailures  map[uint16]bool
	burns         int
}

// NewEPROM returns an erased EPROM.
func NewEPROM(addr protocol.Address, desc *protocol.DeviceDescriptor) *EPROM {
	lockBytes := (desc.PageCount + 7) / 8
	status := blank(int(desc.RedirectBase) + desc.PageCount)
	for i := 0; i < lockBytes; i++ {
		status[int(desc.LockBase)+i] = 0x00
	}
	return &EPROM{
		addr:         addr,
		desc:         desc,
		mem:          blank(desc.Size()),
		status:       status,
		burnFailures: make(map[uint16]bool),
	}
}

func (e *EPROM) Address() protocol.Address { return e.addr }

func (e *EPROM) Descriptor() *protocol.DeviceDescriptor { return e.desc }

// Memory returns a copy of the data memory.
func (e *EPROM) Memory() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.mem...)
}

// SetMemory overwrites data memory starting at addr.
func (e *EPROM) SetMemory(addr uint16, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	copy(e.mem[addr:], data)
}

// Status returns a copy of the status memory.
func (e *EPROM) Status() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.status...)
}

// SetStatus overwrites status memory starting at addr.
func (e *EPROM) SetStatus(addr uint16, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	copy(e.status[addr:], data)
}

// Redirect points reads of page at the byte address target.
func (e *EPROM) Redirect(page int, target byte) {
	e.SetStatus(e.desc.RedirectAddress(page), []byte{target})
}

// CorruptEchoes garbles the next n command CRC echoes.
func (e *EPROM) CorruptEchoes(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.corruptEchoes = n
}

// FailBurnAt makes programming of the memory byte at addr have no effect.
func (e *EPROM) FailBurnAt(addr uint16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.burnFailures[addr] = true
}

// BurnAttempts returns how many data or status bytes the master has tried to program.
func (e *EPROM) BurnAttempts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.burns
}

func (e *EPROM) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st = stCommand
	e.cmd = e.cmd[:0]
	e.out = nil
}

func (e *EPROM) Depower() {}

func (e *EPROM) Write(b byte, _ onewire.Pullup) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.st {
	case stCommand:
		e.cmd = append(e.cmd[:0], b)
		switch b {
		case protocol.CmdReadMemory, protocol.CmdWriteMemory:
			e.space = e.mem
			e.st = stAddrLo
		case protocol.CmdReadStatus, protocol.CmdWriteStatus:
			e.space = e.status
			e.st = stAddrLo
		default:
			e.st = stIgnore
		}

	case stAddrLo:
		e.cmd = append(e.cmd, b)
		e.ptr = uint16(b)
		e.st = stAddrHi

	case stAddrHi:
		e.cmd = append(e.cmd, b)
		e.ptr |= uint16(b) << 8
		switch e.cmd[0] {
		case protocol.CmdReadMemory, protocol.CmdReadStatus:
			e.out = []byte{e.echo(protocol.CRC8(e.cmd))}
			e.st = stStream
		default:
			e.st = stWriteData
		}

	case stWriteData:
		e.data = b
		var crc byte
		if len(e.cmd) == 3 {
			// First byte: the CRC covers command, address and data.
			e.cmd = append(e.cmd, b)
			crc = e.echo(protocol.CRC8(e.cmd))
		} else {
			// Later bytes carry a CRC over the bumped address and data,
			// which the master does not check.
			crc = protocol.CRC8([]byte{byte(e.ptr), b})
			e.echoOK = true
		}
		e.out = []byte{crc}
		e.st = stWriteEcho
	}
}

// echo returns crc, garbled when a corruption is pending.
func (e *EPROM) echo(crc byte) byte {
	if e.corruptEchoes > 0 {
		e.corruptEchoes--
		e.echoOK = false
		return ^crc
	}
	e.echoOK = true
	return crc
}

func (e *EPROM) Read() byte {
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
		if int(e.ptr) < len(e.space) {
			v = e.space[e.ptr]
		}
		e.ptr++
		return v

	case stWriteEcho:
		v := e.out[0]
		e.out = nil
		// The master pulses right after a good echo; model the burn here
		// so status writes that are never read back still take effect.
		if e.echoOK {
			e.program()
		}
		e.st = stWriteReadback
		return v

	case stWriteReadback:
		v := byte(0xFF)
		if int(e.ptr) < len(e.space) {
			v = e.space[e.ptr]
		}
		e.ptr++
		e.st = stWriteData
		return v
	}
	return 0xFF
}

func (e *EPROM) program() {
	e.burns++
	if int(e.ptr) >= len(e.space) {
		return
	}
	if e.cmd[0] == protocol.CmdWriteMemory {
		if e.burnFailures[e.ptr] {
			return
		}
		e.space[e.ptr] &= e.data
		return
	}
	if e.isLockByte(e.ptr) {
		e.space[e.ptr] |= e.data
		return
	}
	e.space[e.ptr] &= e.data
}

func (e *EPROM) isLockByte(addr uint16) bool {
	lockBytes := uint16((e.desc.PageCount + 7) / 8)
	return addr >= e.desc.LockBase && addr < e.desc.LockBase+lockBytes
}
