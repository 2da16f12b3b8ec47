package driver

import (
	"errors"
	"fmt"
)

// BurnError indicates that an EPROM byte did not read back as written.
// The byte may be partially programmed; retrying is not safe.
type BurnError struct {
	Page    int
	Offset  int
	Address uint16
	Want    byte
	Got     byte
}

func (e *BurnError) Error() string {
	return fmt.Sprintf("burn failed at page %d offset %d (0x%04X): wrote 0x%02X, read 0x%02X",
		e.Page, e.Offset, e.Address, e.Want, e.Got)
}

// IntegrityError indicates that the scratchpad read-back differs from the data staged.
type IntegrityError struct {
	Address uint16
	Want    byte
	Got     byte
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("scratchpad mismatch at 0x%04X: staged 0x%02X, read 0x%02X",
		e.Address, e.Want, e.Got)
}

// CopyStatusError indicates that an EEPROM did not report a completed copy.
type CopyStatusError struct {
	Address uint16
	Status  byte
}

func (e *CopyStatusError) Error() string {
	return fmt.Sprintf("copy of 0x%04X returned status 0x%02X", e.Address, e.Status)
}

// PulseError indicates that the programming pin could not be driven.
type PulseError struct {
	Err error
}

func (e *PulseError) Error() string {
	return fmt.Sprintf("programming pulse: %v", e.Err)
}

func (e *PulseError) Unwrap() error {
	return e.Err
}

// FamilyMismatchError indicates that an image was made for another chip family.
type FamilyMismatchError struct {
	Expected byte
	Actual   byte
}

func (e *FamilyMismatchError) Error() string {
	return fmt.Sprintf("family mismatch: image is for family 0x%02X, device is 0x%02X",
		e.Expected, e.Actual)
}

// PageOutOfRangeError indicates that an image page does not exist on the device.
type PageOutOfRangeError struct {
	Page    int
	MaxPage int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page %d is out of range: valid range is 0-%d", e.Page, e.MaxPage)
}

// VerificationError indicates that a programmed page read back differently.
type VerificationError struct {
	Page   int
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("page %d verification failed: %s", e.Page, e.Reason)
}

// IsBurnFailure reports whether err was caused by an EPROM byte that did not
// take. Such failures must be surfaced to an operator rather than retried.
func IsBurnFailure(err error) bool {
	var be *BurnError
	return errors.As(err, &be)
}
