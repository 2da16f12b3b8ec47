package protocol

import (
	"errors"
	"fmt"
)

// Code is the closed set of failure kinds surfaced by every driver operation.
// The numeric values are the historic negative result codes.
type Code int

const (
	// CodeCRCMismatch means a device-echoed CRC did not match the command sent
	CodeCRCMismatch Code = -1

	// CodeInvalidPage means the page is out of range or no device is resolved
	CodeInvalidPage Code = -2

	// CodePageLocked means a write was refused because the page is write-protected
	CodePageLocked Code = -3

	// CodeBadIntegrity means the scratchpad read-back differs from the data staged
	CodeBadIntegrity Code = -4

	// CodeCopyFailure means the final commit or burn verification failed
	CodeCopyFailure Code = -5

	// CodeUnsupportedDevice means the bound family id has no registry entry
	CodeUnsupportedDevice Code = -64

	// CodeDeviceDisconnected means the device was not found on the bus
	CodeDeviceDisconnected Code = -127
)

func (c Code) String() string {
	switch c {
	case CodeCRCMismatch:
		return "crc mismatch"
	case CodeInvalidPage:
		return "invalid page"
	case CodePageLocked:
		return "page locked"
	case CodeBadIntegrity:
		return "bad integrity"
	case CodeCopyFailure:
		return "copy failure"
	case CodeUnsupportedDevice:
		return "unsupported device"
	case CodeDeviceDisconnected:
		return "device disconnected"
	default:
		return fmt.Sprintf("unknown code %d", int(c))
	}
}

// Retriable reports whether repeating the operation may succeed.
// A CopyFailure caused by an EPROM burn is not retriable even though the
// code is; the wrapped BurnError in the driver package tells them apart.
func (c Code) Retriable() bool {
	switch c {
	case CodeCRCMismatch, CodeBadIntegrity, CodeCopyFailure, CodeDeviceDisconnected:
		return true
	default:
		return false
	}
}

// Error is returned by every fallible driver operation.
type Error struct {
	// Op is the operation that failed, e.g. "read page"
	Op string

	// Code is the failure kind
	Code Code

	// Page is the page involved, or -1
	Page int

	// Err carries detail such as a CRCError; may be nil
	Err error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		if e.Page >= 0 {
			msg = fmt.Sprintf("%s %d: %s", e.Op, e.Page, msg)
		} else {
			msg = fmt.Sprintf("%s: %s", e.Op, msg)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s (%d)", msg, int(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrCRCMismatch        = &Error{Code: CodeCRCMismatch, Page: -1}
	ErrInvalidPage        = &Error{Code: CodeInvalidPage, Page: -1}
	ErrPageLocked         = &Error{Code: CodePageLocked, Page: -1}
	ErrBadIntegrity       = &Error{Code: CodeBadIntegrity, Page: -1}
	ErrCopyFailure        = &Error{Code: CodeCopyFailure, Page: -1}
	ErrUnsupportedDevice  = &Error{Code: CodeUnsupportedDevice, Page: -1}
	ErrDeviceDisconnected = &Error{Code: CodeDeviceDisconnected, Page: -1}
)

// NewError builds an *Error for op on page (use -1 when no page applies).
func NewError(op string, code Code, page int, err error) *Error {
	return &Error{Op: op, Code: code, Page: page, Err: err}
}

// CodeOf returns the Code carried by err, or 0 when err is nil or foreign.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsProtocolError returns true if the error is an *Error.
func IsProtocolError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// CRCError records a mismatched command echo.
type CRCError struct {
	Command  Command
	Expected byte
	Actual   byte
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("command 0x%02X echo: expected crc 0x%02X, got 0x%02X",
		e.Command.Opcode, e.Expected, e.Actual)
}
