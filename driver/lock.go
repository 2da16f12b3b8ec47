package driver

import (
	"context"

	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// LockPage write-protects page.
//
// EPROM chips get the page's bit programmed into the status memory; the
// result is not read back, use IsPageLocked to confirm. EEPROM chips get
// 0x55 written to the page's protection register.
func (d *Driver) LockPage(ctx context.Context, page int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	desc, err := d.begin(ctx, opLock, page)
	if err != nil {
		return err
	}

	if desc.IsEPROM() {
		err = d.lockEPROM(desc, page)
	} else {
		err = d.scratchWrite(desc, opLock, page, desc.ProtectAddress(page), []byte{protocol.WriteProtect})
	}
	if err != nil {
		return err
	}

	d.logInfo("page locked", "page", page)
	return nil
}

func (d *Driver) lockEPROM(desc *protocol.DeviceDescriptor, page int) error {
	if err := d.open(opLock, page); err != nil {
		return err
	}

	addr, mask := desc.LockAddress(page)
	cmd := protocol.BuildWriteStatusCmd(addr, mask)
	d.send(cmd, onewire.WeakPullup)
	if err := d.checkEcho(opLock, page, cmd); err != nil {
		return err
	}

	if err := d.pulse(); err != nil {
		return protocol.NewError(opLock, protocol.CodeCopyFailure, page, err)
	}
	d.bus.Reset()
	return nil
}

// IsPageLocked reports whether page is write-protected. Repeated calls
// without an intervening LockPage return the same answer.
func (d *Driver) IsPageLocked(ctx context.Context, page int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	desc, err := d.begin(ctx, opLocked, page)
	if err != nil {
		return false, err
	}
	return d.isPageLocked(desc, page)
}

func (d *Driver) isPageLocked(desc *protocol.DeviceDescriptor, page int) (bool, error) {
	if err := d.open(opLocked, page); err != nil {
		return false, err
	}

	if desc.IsEPROM() {
		addr, mask := desc.LockAddress(page)
		cmd := protocol.BuildReadStatusCmd(addr)
		d.send(cmd, onewire.WeakPullup)
		if err := d.checkEcho(opLocked, page, cmd); err != nil {
			return false, err
		}
		status := d.bus.RxByte()
		d.bus.Reset()
		return protocol.IsLockedStatus(status, mask), nil
	}

	d.send(protocol.BuildReadMemoryCmd(desc.ProtectAddress(page)), onewire.WeakPullup)
	return protocol.IsProtectByte(d.bus.RxByte()), nil
}
