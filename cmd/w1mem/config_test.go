package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "defaults",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.LogLevel)
				assert.True(t, cfg.Verify)
				assert.False(t, cfg.LockCheck)
				assert.Empty(t, cfg.Sim.Devices)
			},
		},
		{
			name: "full",
			yaml: `
log_level: debug
program_pin: GPIO17
address: 2d-000000000001
verify: false
lock_check: true
sim:
  state: bus.cbor
  devices:
    - 2d-000000000001
    - "09 01 00 00 00 00 00 00"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "GPIO17", cfg.ProgramPin)
				assert.Equal(t, "2d-000000000001", cfg.Address)
				assert.False(t, cfg.Verify)
				assert.True(t, cfg.LockCheck)
				assert.Equal(t, "bus.cbor", cfg.Sim.State)
				assert.Len(t, cfg.Sim.Devices, 2)

				lvl, err := cfg.Level()
				require.NoError(t, err)
				assert.Equal(t, slog.LevelDebug, lvl)
			},
		},
		{
			name:    "bad yaml",
			yaml:    "log_level: [",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "bad log level",
			yaml:    "log_level: loud",
			wantErr: `invalid log level "loud"`,
		},
		{
			name:    "bad address",
			yaml:    "address: 2d-00",
			wantErr: "invalid address",
		},
		{
			name:    "bad sim device",
			yaml:    "sim:\n  devices: [zz-000000000001]",
			wantErr: "invalid sim device 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	dir := t.TempDir()
	path := filepath.Join(dir, "w1mem.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log_level: loud\n"), 0o644))
	_, err = LoadConfig(bad)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, bad, ce.File)
}
