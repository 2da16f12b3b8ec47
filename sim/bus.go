package sim

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// Device is the slave side of the bus: one simulated chip.
type Device interface {
	// Address returns the chip's ROM code
	Address() protocol.Address

	// Reset aborts any command in progress
	Reset()

	// Write delivers a byte sent by the master while the chip is selected
	Write(b byte, pull onewire.Pullup)

	// Read returns the next byte the chip drives onto the bus
	Read() byte

	// Depower ends a strong pull-up phase
	Depower()
}

// OpKind identifies a bus primitive in the transcript.
type OpKind int

const (
	OpReset OpKind = iota + 1
	OpResetSearch
	OpSearch
	OpSelect
	OpWrite
	OpRead
	OpDepower
)

func (k OpKind) String() string {
	switch k {
	case OpReset:
		return "reset"
	case OpResetSearch:
		return "reset-search"
	case OpSearch:
		return "search"
	case OpSelect:
		return "select"
	case OpWrite:
		return "write"
	case OpRead:
		return "read"
	case OpDepower:
		return "depower"
	default:
		return "unknown"
	}
}

// Op is one recorded bus primitive.
type Op struct {
	Kind    OpKind
	Byte    byte
	Pull    onewire.Pullup
	Address protocol.Address
}

func (o Op) String() string {
	switch o.Kind {
	case OpSelect, OpSearch:
		return fmt.Sprintf("%s %s", o.Kind, o.Address)
	case OpWrite:
		if o.Pull == onewire.StrongPullup {
			return fmt.Sprintf("write 0x%02X (strong)", o.Byte)
		}
		return fmt.Sprintf("write 0x%02X", o.Byte)
	case OpRead:
		return fmt.Sprintf("read 0x%02X", o.Byte)
	default:
		return o.Kind.String()
	}
}

// Bus is a simulated 1-Wire bus master with attached devices.
// It is safe for concurrent use, although the protocol itself is not.
type Bus struct {
	mu         sync.Mutex
	devices    []Device
	detached   map[protocol.Address]bool
	active     Device
	searchPos  int
	shorted    bool
	transcript []Op
}

// NewBus returns an empty bus.
func NewBus(devices ...Device) *Bus {
	b := &Bus{detached: make(map[protocol.Address]bool)}
	for _, d := range devices {
		b.Attach(d)
	}
	return b
}

// Attach adds a device, or reconnects a detached one.
func (b *Bus) Attach(d Device) {
	b.mu.Lock()
	defer b.mu.Unlock()

	addr := d.Address()
	delete(b.detached, addr)
	for _, existing := range b.devices {
		if existing.Address() == addr {
			return
		}
	}
	b.devices = append(b.devices, d)
}

// Detach disconnects the device at addr without forgetting its state.
func (b *Bus) Detach(addr protocol.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.detached[addr] = true
	if b.active != nil && b.active.Address() == addr {
		b.active = nil
	}
}

// Device returns the attached or detached device at addr.
func (b *Bus) Device(addr protocol.Address) (Device, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.devices {
		if d.Address() == addr {
			return d, true
		}
	}
	return nil, false
}

// Devices returns every known device in attach order.
func (b *Bus) Devices() []Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Device, len(b.devices))
	copy(out, b.devices)
	return out
}

// SetShorted makes every subsequent Reset fail when shorted is true.
func (b *Bus) SetShorted(shorted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shorted = shorted
}

// Transcript returns a copy of the recorded primitives.
func (b *Bus) Transcript() []Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Op, len(b.transcript))
	copy(out, b.transcript)
	return out
}

// ClearTranscript drops the recorded primitives.
func (b *Bus) ClearTranscript() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transcript = nil
}

func (b *Bus) record(op Op) {
	b.transcript = append(b.transcript, op)
}

func (b *Bus) present() []Device {
	var out []Device
	for _, d := range b.devices {
		if !b.detached[d.Address()] {
			out = append(out, d)
		}
	}
	return out
}

// Reset issues a bus reset. It reports whether any device answered with a
// presence pulse.
func (b *Bus) Reset() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Op{Kind: OpReset})

	b.active = nil
	present := b.present()
	for _, d := range present {
		d.Reset()
	}
	return !b.shorted && len(present) > 0
}

// ResetSearch restarts enumeration from the first device.
func (b *Bus) ResetSearch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Op{Kind: OpResetSearch})
	b.searchPos = 0
}

// Search stores the next present device address in addr. It returns false
// once every device has been reported.
func (b *Bus) Search(addr *protocol.Address) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shorted {
		return false
	}
	present := b.present()
	if b.searchPos >= len(present) {
		return false
	}
	*addr = present[b.searchPos].Address()
	b.searchPos++
	b.record(Op{Kind: OpSearch, Address: *addr})
	return true
}

// Select addresses one device; the others ignore traffic until the next reset.
func (b *Bus) Select(addr protocol.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Op{Kind: OpSelect, Address: addr})

	b.active = nil
	for _, d := range b.present() {
		if d.Address() == addr {
			b.active = d
			return
		}
	}
}

// TxByte sends v to the selected device.
func (b *Bus) TxByte(v byte, pull onewire.Pullup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Op{Kind: OpWrite, Byte: v, Pull: pull})

	if b.active != nil {
		b.active.Write(v, pull)
	}
}

// RxByte reads one byte from the selected device. An idle bus reads 0xFF.
func (b *Bus) RxByte() byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := byte(0xFF)
	if b.active != nil && !b.shorted {
		v = b.active.Read()
	}
	b.record(Op{Kind: OpRead, Byte: v})
	return v
}

// RxBytes reads n bytes from the selected device.
func (b *Bus) RxBytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b.RxByte()
	}
	return out
}

// Depower drops the strong pull-up.
func (b *Bus) Depower() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Op{Kind: OpDepower})

	if b.active != nil {
		b.active.Depower()
	}
}
