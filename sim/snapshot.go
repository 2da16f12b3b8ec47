package sim

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/moffa90/go-w1eprom/protocol"
)

// snapEncMode is the CBOR encoder mode for bus snapshots.
var snapEncMode cbor.EncMode

// snapDecMode is the CBOR decoder mode for bus snapshots.
var snapDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	snapEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	snapDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// Snapshot is the persistent state of every device on a bus.
type Snapshot struct {
	Devices []DeviceState `cbor:"1,keyasint"`
}

// DeviceState is the persistent state of one device.
type DeviceState struct {
	Address  []byte `cbor:"1,keyasint"`
	Memory   []byte `cbor:"2,keyasint,omitempty"`
	Status   []byte `cbor:"3,keyasint,omitempty"`
	Detached bool   `cbor:"4,keyasint,omitempty"`
}

// Snapshot captures the state of every device on the bus.
func (b *Bus) Snapshot() Snapshot {
	b.mu.Lock()
	devices := append([]Device(nil), b.devices...)
	detached := make(map[protocol.Address]bool, len(b.detached))
	for k, v := range b.detached {
		detached[k] = v
	}
	b.mu.Unlock()

	var snap Snapshot
	for _, d := range devices {
		addr := d.Address()
		ds := DeviceState{
			Address:  addr[:],
			Detached: detached[addr],
		}
		switch c := d.(type) {
		case *EPROM:
			ds.Memory = c.Memory()
			ds.Status = c.Status()
		case Chip:
			ds.Memory = c.Memory()
		}
		snap.Devices = append(snap.Devices, ds)
	}
	return snap
}

// Restore builds a bus from a snapshot. Devices of unsupported families
// come back as Strangers.
func Restore(snap Snapshot) (*Bus, error) {
	bus := NewBus()
	for i, ds := range snap.Devices {
		if len(ds.Address) != protocol.AddressSize {
			return nil, fmt.Errorf("device %d: invalid address length %d", i, len(ds.Address))
		}
		var addr protocol.Address
		copy(addr[:], ds.Address)

		var dev Device
		chip, err := NewChip(addr)
		if err != nil {
			dev = NewStranger(addr)
		} else {
			if len(ds.Memory) > len(chip.Memory()) {
				return nil, fmt.Errorf("device %s: memory image of %d bytes exceeds %d", addr, len(ds.Memory), len(chip.Memory()))
			}
			chip.SetMemory(0, ds.Memory)
			if e, ok := chip.(*EPROM); ok && len(ds.Status) > 0 {
				if len(ds.Status) > len(e.Status()) {
					return nil, fmt.Errorf("device %s: status image of %d bytes exceeds %d", addr, len(ds.Status), len(e.Status()))
				}
				e.SetStatus(0, ds.Status)
			}
			dev = chip
		}

		bus.Attach(dev)
		if ds.Detached {
			bus.Detach(addr)
		}
	}
	return bus, nil
}

// EncodeSnapshot encodes a snapshot to CBOR.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	return snapEncMode.Marshal(snap)
}

// DecodeSnapshot decodes a CBOR snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := snapDecMode.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveFile writes the bus state to path.
func (b *Bus) SaveFile(path string) error {
	data, err := EncodeSnapshot(b.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFile restores a bus saved with SaveFile.
func LoadFile(path string) (*Bus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return Restore(snap)
}
