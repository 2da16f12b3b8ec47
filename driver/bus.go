package driver

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// Bus is the byte-level 1-Wire master the driver talks through.
//
// Implementations wrap a bus master (a bit-banged pin, a DS2480B or DS2482
// bridge, a simulator). The driver issues a complete reset, select, command,
// response sequence per exchange and expects no other traffic in between.
type Bus interface {
	// Reset issues a reset pulse and reports whether any device answered
	Reset() bool

	// ResetSearch restarts ROM enumeration
	ResetSearch()

	// Search stores the next ROM code in addr, returning false when done
	Search(addr *protocol.Address) bool

	// Select addresses a single device (Match ROM)
	Select(addr protocol.Address)

	// TxByte writes one byte; StrongPullup keeps the line powered afterwards
	TxByte(b byte, pull onewire.Pullup)

	// RxByte reads one byte
	RxByte() byte

	// RxBytes reads n bytes
	RxBytes(n int) []byte

	// Depower ends a strong pull-up
	Depower()
}

// Pin drives the EPROM programming voltage switch.
// Any periph.io gpio.PinOut satisfies it.
type Pin interface {
	Out(l gpio.Level) error
}

// Sleeper provides the host-side delays required by the chips.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(time.Duration)

// Sleep calls f(d).
func (f SleeperFunc) Sleep(d time.Duration) {
	f(d)
}

var systemSleeper = SleeperFunc(time.Sleep)
