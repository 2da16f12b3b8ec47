package protocol

// Page is a caller-owned buffer holding exactly one memory page.
type Page [PageSize]byte

// Family is the protocol family a chip belongs to.
// EPROM and EEPROM chips share addressing but differ in every write sequence.
type Family int

const (
	// FamilyEPROM chips are one-time programmable and burn byte by byte
	FamilyEPROM Family = iota + 1

	// FamilyEEPROM chips stage writes through a scratchpad
	FamilyEEPROM
)

func (f Family) String() string {
	switch f {
	case FamilyEPROM:
		return "EPROM"
	case FamilyEEPROM:
		return "EEPROM"
	default:
		return "unknown"
	}
}

// DeviceDescriptor describes one supported chip family.
// Descriptors live in the package registry and are never mutated.
type DeviceDescriptor struct {
	// FamilyID is the first byte of the chip's bus address
	FamilyID byte

	// Name is the chip model, e.g. "DS2431"
	Name string

	// PageCount is the number of 32-byte data pages
	PageCount int

	// Family selects the EPROM or EEPROM command sequences
	Family Family

	// HasAuthEcho is set for EEPROM chips that return a 3-byte
	// authorization code and a final copy status. The DS2430 has neither.
	HasAuthEcho bool

	// LockBase is the EPROM status address of the first write-protect byte.
	// Page p is protected by bit p%8 of the byte at LockBase+p/8.
	LockBase uint16

	// RedirectBase is the EPROM status address of the redirection byte for page 0.
	RedirectBase uint16
}

// IsEPROM reports whether the chip is a one-time programmable EPROM.
func (d *DeviceDescriptor) IsEPROM() bool {
	return d.Family == FamilyEPROM
}

// Size returns the size of the data area in bytes.
func (d *DeviceDescriptor) Size() int {
	return d.PageCount * PageSize
}

// ValidPage reports whether page indexes a data page of this chip.
func (d *DeviceDescriptor) ValidPage(page int) bool {
	return page >= 0 && page < d.PageCount
}

// PageAddress returns the memory address of the first byte of page.
func (d *DeviceDescriptor) PageAddress(page int) uint16 {
	return uint16(page * PageSize)
}

// ProtectAddress returns the EEPROM address of the protection register for page.
// The registers sit directly after the data pages.
func (d *DeviceDescriptor) ProtectAddress(page int) uint16 {
	return uint16(d.PageCount*PageSize + page)
}

// LockAddress returns the EPROM status address and bit mask that protect page.
func (d *DeviceDescriptor) LockAddress(page int) (addr uint16, mask byte) {
	return d.LockBase + uint16(page/8), 1 << uint(page%8)
}

// RedirectAddress returns the EPROM status address of the redirection byte for page.
func (d *DeviceDescriptor) RedirectAddress(page int) uint16 {
	return d.RedirectBase + uint16(page)
}
