package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"periph.io/x/conn/v3/onewire"

	"github.com/moffa90/go-w1eprom/protocol"
)

// Operation names used in errors and logs.
const (
	opSearch = "search"
	opScan   = "scan"
	opRead   = "read page"
	opWrite  = "write page"
	opLock   = "lock page"
	opLocked = "query lock"
	opDump   = "dump"
	opProg   = "program"
)

// Session is the active binding between a Driver and one device.
type Session struct {
	// ID identifies the binding in logs; a new one is minted on every bind
	ID uuid.UUID

	// Address is the bound device address
	Address protocol.Address

	// Descriptor is the registry entry for the address, nil when the
	// family is not supported
	Descriptor *protocol.DeviceDescriptor
}

// Supported reports whether the bound family is in the device registry.
func (s Session) Supported() bool {
	return s.Descriptor != nil
}

// Name returns the chip model, or "" for an unsupported family.
func (s Session) Name() string {
	if s.Descriptor == nil {
		return ""
	}
	return s.Descriptor.Name
}

func newSession(addr protocol.Address) Session {
	desc, _ := protocol.LookupAddress(addr)
	return Session{
		ID:         uuid.New(),
		Address:    addr,
		Descriptor: desc,
	}
}

// Driver reads, writes and locks pages of one 1-Wire memory chip at a time.
//
// Each operation runs its reset, select, command and response sequences
// while holding the Driver's lock, so a Driver is safe for concurrent use.
// Use one Driver per physical bus.
type Driver struct {
	bus    Bus
	config Config

	mu      sync.Mutex
	session Session
}

// New creates a new Driver on bus with the given options.
//
// Example:
//
//	drv := driver.New(bus,
//	    driver.WithProgramPin(pin),
//	    driver.WithLogger(logger),
//	)
func New(bus Bus, opts ...Option) *Driver {
	if bus == nil {
		panic("bus cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Driver{
		bus:    bus,
		config: cfg,
	}
}

// Search scans the bus and binds the first device of a supported family.
// Devices of other families and addresses with a bad CRC are skipped.
// On failure the current binding is left unchanged.
func (d *Driver) Search(ctx context.Context) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Session{}, fmt.Errorf("%s: cancelled: %w", opSearch, err)
	}

	if !d.bus.Reset() {
		return Session{}, protocol.NewError(opSearch, protocol.CodeDeviceDisconnected, -1,
			errors.New("no presence pulse"))
	}

	d.bus.ResetSearch()
	var addr protocol.Address
	for d.bus.Search(&addr) {
		if !addr.ValidChecksum() {
			d.logDebug("skipping address with bad crc", "address", addr.Hex())
			continue
		}
		if !protocol.IsSupported(addr) {
			d.logDebug("skipping unsupported device", "address", addr.String())
			continue
		}

		d.session = newSession(addr)
		d.logInfo("device bound", "device", d.session.Name())
		return d.session, nil
	}

	return Session{}, protocol.NewError(opSearch, protocol.CodeDeviceDisconnected, -1,
		errors.New("no supported device found"))
}

// Scan returns every address found on the bus without changing the binding.
func (d *Driver) Scan(ctx context.Context) ([]protocol.Address, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: cancelled: %w", opScan, err)
	}

	if !d.bus.Reset() {
		return nil, protocol.NewError(opScan, protocol.CodeDeviceDisconnected, -1,
			errors.New("no presence pulse"))
	}

	d.bus.ResetSearch()
	var found []protocol.Address
	var addr protocol.Address
	for d.bus.Search(&addr) {
		found = append(found, addr)
	}
	return found, nil
}

// Bind binds addr without touching the bus. The session's Descriptor is nil
// when the family is unsupported; page operations then fail with
// UnsupportedDevice.
func (d *Driver) Bind(addr protocol.Address) Session {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.session = newSession(addr)
	if d.session.Supported() {
		d.logDebug("address bound", "device", d.session.Name())
	} else {
		d.logDebug("address bound to unsupported family", "family", fmt.Sprintf("0x%02X", addr.FamilyID()))
	}
	return d.session
}

// Session returns the current binding.
func (d *Driver) Session() Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// Address returns the bound address.
func (d *Driver) Address() protocol.Address {
	return d.Session().Address
}

// DeviceName returns the bound chip model, or "" when unsupported or unbound.
func (d *Driver) DeviceName() string {
	return d.Session().Name()
}

// IsEPROM reports whether the bound chip is a one-time programmable EPROM.
func (d *Driver) IsEPROM() bool {
	s := d.Session()
	return s.Descriptor != nil && s.Descriptor.IsEPROM()
}

// IsConnected re-enumerates the bus and reports whether the bound address
// is still present.
func (d *Driver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isConnected()
}

func (d *Driver) isConnected() bool {
	if !d.bus.Reset() {
		return false
	}
	d.bus.ResetSearch()
	var addr protocol.Address
	for d.bus.Search(&addr) {
		if addr == d.session.Address {
			return true
		}
	}
	return false
}

// resolve returns the bound descriptor or the error page operations report
// without one.
func (d *Driver) resolve(op string, page int) (*protocol.DeviceDescriptor, error) {
	if d.session.Descriptor != nil {
		return d.session.Descriptor, nil
	}
	if d.session.Address.IsZero() {
		return nil, protocol.NewError(op, protocol.CodeInvalidPage, page, errors.New("no device bound"))
	}
	return nil, protocol.NewError(op, protocol.CodeUnsupportedDevice, page,
		fmt.Errorf("family 0x%02X", d.session.Address.FamilyID()))
}

// begin runs the checks every page operation starts with: cancellation,
// a resolved device, a valid page and a device still on the bus.
func (d *Driver) begin(ctx context.Context, op string, page int) (*protocol.DeviceDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: cancelled: %w", op, err)
	}

	desc, err := d.resolve(op, page)
	if err != nil {
		return nil, err
	}

	if !desc.ValidPage(page) {
		return nil, protocol.NewError(op, protocol.CodeInvalidPage, page,
			fmt.Errorf("%s has pages 0-%d", desc.Name, desc.PageCount-1))
	}

	if !d.isConnected() {
		return nil, protocol.NewError(op, protocol.CodeDeviceDisconnected, page, nil)
	}

	return desc, nil
}

// open starts a transaction with the bound device.
func (d *Driver) open(op string, page int) error {
	if !d.bus.Reset() {
		return protocol.NewError(op, protocol.CodeDeviceDisconnected, page, errors.New("no presence pulse"))
	}
	d.bus.Select(d.session.Address)
	return nil
}

// send writes cmd. The last byte goes out with pull on the line.
func (d *Driver) send(cmd protocol.Command, pull onewire.Pullup) {
	frame := cmd.Bytes()
	for i, b := range frame {
		p := onewire.WeakPullup
		if i == len(frame)-1 {
			p = pull
		}
		d.bus.TxByte(b, p)
	}
}

// checkEcho reads the CRC an EPROM returns after cmd.
func (d *Driver) checkEcho(op string, page int, cmd protocol.Command) error {
	if err := protocol.CheckEcho(cmd, d.bus.RxByte()); err != nil {
		d.logError("command crc mismatch", "op", op, "page", page, "error", err)
		return protocol.NewError(op, protocol.CodeCRCMismatch, page, err)
	}
	return nil
}

// reportProgress calls the progress callback if configured.
func (d *Driver) reportProgress(progress Progress) {
	if d.config.ProgressCallback != nil {
		d.config.ProgressCallback(progress)
	}
}

func (d *Driver) withSession(keysAndValues []interface{}) []interface{} {
	return append([]interface{}{"session", d.session.ID.String(), "address", d.session.Address.String()}, keysAndValues...)
}

// logDebug logs a debug message if a logger is configured.
func (d *Driver) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, d.withSession(keysAndValues)...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *Driver) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, d.withSession(keysAndValues)...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Driver) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, d.withSession(keysAndValues)...)
	}
}
