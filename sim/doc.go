// Package sim simulates a 1-Wire bus populated with Dallas/Maxim memory chips.
//
// The simulator implements the same byte-level primitives a real bus master
// exposes (reset, search, select, read, write, depower) and models the
// command state machines of the EPROM and EEPROM chips in the device
// registry, so the driver can be exercised without hardware:
//
//	bus := sim.NewBus()
//	chip, _ := sim.NewChip(protocol.NewAddress(0x2D, serial))
//	bus.Attach(chip)
//
//	drv := driver.New(bus)
//
// Chips expose fault injection hooks (corrupted CRC echoes, failed burns,
// corrupted scratchpad read-back, refused copies) and the bus keeps a
// transcript of every primitive for assertions.
//
// Bus state can be saved to and restored from a CBOR snapshot, which the
// w1mem command uses to keep simulated chips between invocations.
package sim
