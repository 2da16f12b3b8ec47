package driver

import (
	"time"

	"github.com/moffa90/go-w1eprom/protocol"
)

// Config holds the driver configuration.
type Config struct {
	// ProgressCallback is called during Dump and Program (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ProgramPin switches the EPROM programming voltage (optional).
	// Without it the bus master must supply the programming pulse itself.
	ProgramPin Pin

	// Sleeper provides host delays
	Sleeper Sleeper

	// PulseWidth is how long ProgramPin is held high per EPROM burn
	PulseWidth time.Duration

	// SettleDelay is the wait after every pulse window
	SettleDelay time.Duration

	// CopyDelay is the wait for an EEPROM scratchpad copy
	CopyDelay time.Duration

	// VerifyAfterWrite reads every page back after Program writes it
	VerifyAfterWrite bool

	// LockCheck makes WritePage refuse locked pages with PageLocked
	LockCheck bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Sleeper:          systemSleeper,
		PulseWidth:       protocol.ProgramPulseWidth,
		SettleDelay:      protocol.ProgramSettleDelay,
		CopyDelay:        protocol.CopyDelay,
		VerifyAfterWrite: true,
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithProgressCallback sets a callback function to track Dump and Program.
//
// Example:
//
//	drv := driver.New(bus,
//	    driver.WithProgressCallback(func(p driver.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the driver operations.
//
// Example:
//
//	drv := driver.New(bus, driver.WithLogger(driver.NewSlogLogger(slog.Default())))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgramPin sets the pin that gates the EPROM programming pulse.
//
// Example:
//
//	pin := gpioreg.ByName("GPIO17")
//	drv := driver.New(bus, driver.WithProgramPin(pin))
func WithProgramPin(pin Pin) Option {
	return func(c *Config) {
		c.ProgramPin = pin
	}
}

// WithSleeper replaces time.Sleep for the hardware delays.
func WithSleeper(s Sleeper) Option {
	return func(c *Config) {
		if s != nil {
			c.Sleeper = s
		}
	}
}

// WithPulseWidth lengthens the programming pulse.
// Values below protocol.ProgramPulseWidth are ignored.
func WithPulseWidth(d time.Duration) Option {
	return func(c *Config) {
		if d >= protocol.ProgramPulseWidth {
			c.PulseWidth = d
		}
	}
}

// WithSettleDelay lengthens the wait after each pulse window.
// Values below protocol.ProgramSettleDelay are ignored.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= protocol.ProgramSettleDelay {
			c.SettleDelay = d
		}
	}
}

// WithCopyDelay lengthens the wait for an EEPROM scratchpad copy.
// Values below protocol.CopyDelay are ignored.
func WithCopyDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= protocol.CopyDelay {
			c.CopyDelay = d
		}
	}
}

// WithVerifyAfterWrite enables or disables read-back verification in Program.
// Default is true.
func WithVerifyAfterWrite(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterWrite = verify
	}
}

// WithLockCheck makes WritePage query the page lock first and fail with
// PageLocked instead of sending data to a protected page. Default is false.
func WithLockCheck(check bool) Option {
	return func(c *Config) {
		c.LockCheck = check
	}
}
