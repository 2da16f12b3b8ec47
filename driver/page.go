package driver

import (
	"context"

	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// ReadPage reads one 32-byte page into buf.
//
// On EPROM chips the page's redirection byte is consulted first; a
// redirected page is read from the address it names. buf is only written
// when the whole sequence succeeds. The data itself carries no CRC check.
func (d *Driver) ReadPage(ctx context.Context, page int, buf *protocol.Page) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	desc, err := d.begin(ctx, opRead, page)
	if err != nil {
		return err
	}

	data, err := d.readPage(desc, page)
	if err != nil {
		return err
	}

	*buf = data
	return nil
}

func (d *Driver) readPage(desc *protocol.DeviceDescriptor, page int) (protocol.Page, error) {
	var data protocol.Page

	addr := desc.PageAddress(page)
	if desc.IsEPROM() {
		target, err := d.redirect(desc, page)
		if err != nil {
			return data, err
		}
		addr = target
	}

	if err := d.open(opRead, page); err != nil {
		return data, err
	}

	cmd := protocol.BuildReadMemoryCmd(addr)
	d.send(cmd, onewire.WeakPullup)
	if desc.IsEPROM() {
		if err := d.checkEcho(opRead, page, cmd); err != nil {
			return data, err
		}
	}

	copy(data[:], d.bus.RxBytes(protocol.PageSize))
	d.logDebug("page read", "page", page, "addr", addr)
	return data, nil
}

// redirect returns the address an EPROM page is served from.
func (d *Driver) redirect(desc *protocol.DeviceDescriptor, page int) (uint16, error) {
	if err := d.open(opRead, page); err != nil {
		return 0, err
	}

	cmd := protocol.BuildReadStatusCmd(desc.RedirectAddress(page))
	d.send(cmd, onewire.WeakPullup)
	if err := d.checkEcho(opRead, page, cmd); err != nil {
		return 0, err
	}

	if target, ok := protocol.ParseRedirect(d.bus.RxByte()); ok {
		d.logDebug("page redirected", "page", page, "target", target)
		return target, nil
	}
	return desc.PageAddress(page), nil
}
