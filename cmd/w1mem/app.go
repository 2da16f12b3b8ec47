package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/moffa90/go-w1eprom/driver"
	"github.com/moffa90/go-w1eprom/protocol"
	"github.com/moffa90/go-w1eprom/sim"
)

// app holds what every subcommand needs.
type app struct {
	cfg    *Config
	log    *slog.Logger
	bus    *sim.Bus
	drv    *driver.Driver
	out    io.Writer
	bound  bool
	onPage driver.ProgressCallback
}

// newApp loads the simulated bus and builds a driver for it.
func newApp(cfg *Config, out, logOut io.Writer) (*app, error) {
	logger, err := cfg.NewLogger(logOut)
	if err != nil {
		return nil, err
	}

	bus, err := openBus(cfg.Sim)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, bus: bus, out: out}

	opts := []driver.Option{
		driver.WithLogger(driver.NewSlogLogger(logger)),
		driver.WithVerifyAfterWrite(cfg.Verify),
		driver.WithLockCheck(cfg.LockCheck),
		driver.WithProgressCallback(func(p driver.Progress) {
			if a.onPage != nil {
				a.onPage(p)
			}
		}),
	}

	if cfg.ProgramPin != "" {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("host initialization failed: %w", err)
		}
		pin := gpioreg.ByName(cfg.ProgramPin)
		if pin == nil {
			return nil, fmt.Errorf("program pin %q not found", cfg.ProgramPin)
		}
		opts = append(opts, driver.WithProgramPin(pin))
		logger.Debug("programming pin ready", "pin", pin.Name())
	}

	a.drv = driver.New(bus, opts...)
	return a, nil
}

// openBus restores the saved bus, or seeds a new one from the device list.
func openBus(cfg SimConfig) (*sim.Bus, error) {
	if cfg.State != "" {
		bus, err := sim.LoadFile(cfg.State)
		if err == nil {
			return bus, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load bus state: %w", err)
		}
	}

	bus := sim.NewBus()
	for _, s := range cfg.Devices {
		addr, err := protocol.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("sim device %q: %w", s, err)
		}
		chip, err := sim.NewChip(addr)
		if err != nil {
			bus.Attach(sim.NewStranger(addr))
			continue
		}
		bus.Attach(chip)
	}
	return bus, nil
}

// save writes the bus state back when a state file is configured.
func (a *app) save() error {
	if a.cfg.Sim.State == "" {
		return nil
	}
	if err := a.bus.SaveFile(a.cfg.Sim.State); err != nil {
		return fmt.Errorf("save bus state: %w", err)
	}
	return nil
}

// bind binds the configured address, or searches when none is set.
// The binding is made once per app.
func (a *app) bind(ctx context.Context) error {
	if a.bound {
		return nil
	}

	if a.cfg.Address != "" {
		addr, err := protocol.ParseAddress(a.cfg.Address)
		if err != nil {
			return err
		}
		s := a.drv.Bind(addr)
		if !s.Supported() {
			return protocol.NewError("bind", protocol.CodeUnsupportedDevice, -1,
				fmt.Errorf("family 0x%02X", addr.FamilyID()))
		}
	} else if _, err := a.drv.Search(ctx); err != nil {
		return err
	}

	a.bound = true
	return nil
}
