package driver

import (
	"context"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// WritePage writes a 32-byte page.
//
// EEPROM chips receive the page as four 8-byte scratchpad writes, each
// verified and committed before the next. EPROM chips burn the page a byte
// at a time and stop at the first byte that does not read back; such a
// failure is reported as CopyFailure wrapping a *BurnError and must not be
// retried blindly.
//
// With WithLockCheck the page's write-protect state is queried first and a
// locked page fails with PageLocked before any data is sent.
func (d *Driver) WritePage(ctx context.Context, page int, data *protocol.Page) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	desc, err := d.begin(ctx, opWrite, page)
	if err != nil {
		return err
	}

	if d.config.LockCheck {
		locked, err := d.isPageLocked(desc, page)
		if err != nil {
			return err
		}
		if locked {
			return protocol.NewError(opWrite, protocol.CodePageLocked, page, nil)
		}
	}

	if err := d.writePage(desc, page, data); err != nil {
		return err
	}

	d.logInfo("page written", "page", page)
	return nil
}

func (d *Driver) writePage(desc *protocol.DeviceDescriptor, page int, data *protocol.Page) error {
	if desc.IsEPROM() {
		return d.burnPage(desc, page, data)
	}

	base := desc.PageAddress(page)
	for off := 0; off < protocol.PageSize; off += protocol.ScratchChunkSize {
		chunk := data[off : off+protocol.ScratchChunkSize]
		if err := d.scratchWrite(desc, opWrite, page, base+uint16(off), chunk); err != nil {
			return err
		}
	}
	return nil
}

// burnPage programs an EPROM page byte by byte.
func (d *Driver) burnPage(desc *protocol.DeviceDescriptor, page int, data *protocol.Page) error {
	base := desc.PageAddress(page)

	if err := d.open(opWrite, page); err != nil {
		return err
	}

	cmd, err := protocol.BuildWriteMemoryCmd(base, data[:1])
	if err != nil {
		return protocol.NewError(opWrite, protocol.CodeInvalidPage, page, err)
	}
	d.send(cmd, onewire.WeakPullup)
	if err := d.checkEcho(opWrite, page, cmd); err != nil {
		return err
	}

	for i := 0; i < protocol.PageSize; i++ {
		if i > 0 {
			d.bus.TxByte(data[i], onewire.WeakPullup)
			// The chip's CRC here covers a 9-bit address lane the
			// byte interface cannot reproduce.
			_ = d.bus.RxByte()
		}

		if err := d.pulse(); err != nil {
			return protocol.NewError(opWrite, protocol.CodeCopyFailure, page, err)
		}

		if got := d.bus.RxByte(); got != data[i] {
			berr := &BurnError{
				Page:    page,
				Offset:  i,
				Address: base + uint16(i),
				Want:    data[i],
				Got:     got,
			}
			d.logError("burn failed", "page", page, "offset", i, "error", berr)
			return protocol.NewError(opWrite, protocol.CodeCopyFailure, page, berr)
		}
	}
	return nil
}

// pulse runs one programming window: the pin high for PulseWidth when one is
// configured, then SettleDelay in every case.
func (d *Driver) pulse() error {
	if pin := d.config.ProgramPin; pin != nil {
		if err := pin.Out(gpio.High); err != nil {
			return &PulseError{Err: err}
		}
		d.config.Sleeper.Sleep(d.config.PulseWidth)
		if err := pin.Out(gpio.Low); err != nil {
			return &PulseError{Err: err}
		}
	}
	d.config.Sleeper.Sleep(d.config.SettleDelay)
	return nil
}

// scratchWrite stages payload at addr and commits it to EEPROM memory.
func (d *Driver) scratchWrite(desc *protocol.DeviceDescriptor, op string, page int, addr uint16, payload []byte) error {
	cmd, err := protocol.BuildWriteMemoryCmd(addr, payload)
	if err != nil {
		return protocol.NewError(op, protocol.CodeInvalidPage, page, err)
	}

	if err := d.open(op, page); err != nil {
		return err
	}
	d.send(cmd, onewire.WeakPullup)

	if desc.HasAuthEcho {
		if err := d.open(op, page); err != nil {
			return err
		}
		d.send(protocol.BuildReadScratchpadCmd(), onewire.WeakPullup)

		auth, _, _ := protocol.ParseAuthCode(d.bus.RxBytes(protocol.AuthCodeSize))
		for i, want := range payload {
			if got := d.bus.RxByte(); got != want {
				ierr := &IntegrityError{Address: addr + uint16(i), Want: want, Got: got}
				d.logError("scratchpad mismatch", "page", page, "error", ierr)
				return protocol.NewError(op, protocol.CodeBadIntegrity, page, ierr)
			}
		}

		if err := d.open(op, page); err != nil {
			return err
		}
		d.send(protocol.BuildCopyScratchpadCmd(auth), onewire.StrongPullup)
	} else {
		if err := d.open(op, page); err != nil {
			return err
		}
		d.send(protocol.BuildVerifyResumeCmd(), onewire.StrongPullup)
	}

	d.config.Sleeper.Sleep(d.config.CopyDelay)
	d.bus.Depower()

	if desc.HasAuthEcho {
		if status := d.bus.RxByte(); status != protocol.CopySuccess {
			serr := &CopyStatusError{Address: addr, Status: status}
			d.logError("scratchpad copy failed", "page", page, "error", serr)
			return protocol.NewError(op, protocol.CodeCopyFailure, page, serr)
		}
	}

	d.logDebug("scratchpad committed", "page", page, "addr", addr, "len", len(payload))
	return nil
}
