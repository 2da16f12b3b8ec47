package protocol

// CheckEcho compares the CRC an EPROM echoed after cmd with the CRC computed
// locally. It returns a *CRCError on mismatch.
func CheckEcho(cmd Command, echoed byte) error {
	if want := cmd.CRC(); want != echoed {
		return &CRCError{Command: cmd, Expected: want, Actual: echoed}
	}
	return nil
}

// ParseRedirect interprets an EPROM redirection byte. It returns the byte
// address that replaces the computed page address, and false when the
// page is not redirected.
func ParseRedirect(b byte) (uint16, bool) {
	if b == NoRedirect {
		return 0, false
	}
	return uint16(b), true
}

// ParseAuthCode splits the first AuthCodeSize bytes of a scratchpad read into
// the authorization code and the target address it encodes.
func ParseAuthCode(data []byte) (auth [AuthCodeSize]byte, target uint16, ok bool) {
	if len(data) < AuthCodeSize {
		return auth, 0, false
	}
	copy(auth[:], data)
	return auth, uint16(auth[0]) | uint16(auth[1])<<8, true
}

// IsLockedStatus reports whether the write-protect bit selected by mask is set.
func IsLockedStatus(status, mask byte) bool {
	return status&mask != 0
}

// IsProtectByte reports whether an EEPROM protection register marks its page locked.
func IsProtectByte(b byte) bool {
	return b == WriteProtect
}
