package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-w1eprom/protocol"
)

// Config is the w1mem configuration file.
type Config struct {
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// ProgramPin names the GPIO that gates the EPROM programming pulse,
	// e.g. "GPIO17". Empty means the bus master supplies the pulse.
	ProgramPin string `yaml:"program_pin"`

	// Address binds a device instead of searching for the first supported one
	Address string `yaml:"address"`

	// Verify reads pages back after program
	Verify bool `yaml:"verify"`

	// LockCheck refuses writes to locked pages before touching the chip
	LockCheck bool `yaml:"lock_check"`

	Sim SimConfig `yaml:"sim"`
}

// SimConfig describes the simulated bus.
type SimConfig struct {
	// State is the CBOR file the bus is loaded from and saved to
	State string `yaml:"state"`

	// Devices seeds a bus that has no saved state yet
	Devices []string `yaml:"devices"`
}

// ConfigError reports an unusable configuration.
type ConfigError struct {
	File    string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verify:   true,
	}
}

// ParseConfig parses a configuration from YAML bytes over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads a configuration file. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		if ce, ok := err.(*ConfigError); ok {
			ce.File = path
			return nil, ce
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that can be checked without hardware.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Address != "" {
		if _, err := protocol.ParseAddress(c.Address); err != nil {
			return &ConfigError{Message: "invalid address", Cause: err}
		}
	}
	for i, dev := range c.Sim.Devices {
		if _, err := protocol.ParseAddress(dev); err != nil {
			return &ConfigError{Message: fmt.Sprintf("invalid sim device %d", i), Cause: err}
		}
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, &ConfigError{Message: fmt.Sprintf("invalid log level %q", c.LogLevel), Cause: err}
	}
	return lvl, nil
}

// NewLogger builds the text logger the CLI and the driver share.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
