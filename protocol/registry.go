package protocol

// registry is the fixed, ordered table of supported chips.
var registry = []DeviceDescriptor{
	// EPROMs
	{FamilyID: 0x09, Name: "DS2502", PageCount: 4, Family: FamilyEPROM, LockBase: 0x0000, RedirectBase: 0x0001},
	{FamilyID: 0x0B, Name: "DS2505", PageCount: 64, Family: FamilyEPROM, LockBase: 0x0000, RedirectBase: 0x0100},
	// EEPROMs
	{FamilyID: 0x14, Name: "DS2430", PageCount: 1, Family: FamilyEEPROM, HasAuthEcho: false},
	{FamilyID: 0x2D, Name: "DS2431", PageCount: 4, Family: FamilyEEPROM, HasAuthEcho: true},
	{FamilyID: 0x23, Name: "DS2433", PageCount: 16, Family: FamilyEEPROM, HasAuthEcho: true},
}

// Lookup returns the descriptor registered for familyID.
// The returned pointer refers into the registry and must not be modified.
func Lookup(familyID byte) (*DeviceDescriptor, bool) {
	for i := range registry {
		if registry[i].FamilyID == familyID {
			return &registry[i], true
		}
	}
	return nil, false
}

// LookupAddress resolves the family id of addr against the registry.
func LookupAddress(addr Address) (*DeviceDescriptor, bool) {
	return Lookup(addr.FamilyID())
}

// IsSupported reports whether addr belongs to a supported chip family.
func IsSupported(addr Address) bool {
	_, ok := LookupAddress(addr)
	return ok
}

// Descriptors returns a copy of the registry in table order.
func Descriptors() []DeviceDescriptor {
	out := make([]DeviceDescriptor, len(registry))
	copy(out, registry)
	return out
}

// LookupName returns the descriptor whose Name matches name.
func LookupName(name string) (*DeviceDescriptor, bool) {
	for i := range registry {
		if registry[i].Name == name {
			return &registry[i], true
		}
	}
	return nil, false
}
