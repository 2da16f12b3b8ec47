package driver

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moffa90/go-w1eprom/protocol"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, protocol.ProgramPulseWidth, cfg.PulseWidth)
	assert.Equal(t, protocol.ProgramSettleDelay, cfg.SettleDelay)
	assert.Equal(t, protocol.CopyDelay, cfg.CopyDelay)
	assert.True(t, cfg.VerifyAfterWrite)
	assert.False(t, cfg.LockCheck)
	assert.Nil(t, cfg.ProgramPin)
	assert.Nil(t, cfg.Logger)
	assert.NotNil(t, cfg.Sleeper)
}

func TestTimingOptions(t *testing.T) {
	tests := []struct {
		name   string
		opt    Option
		field  func(Config) time.Duration
		expect time.Duration
	}{
		{"pulse width raised", WithPulseWidth(2 * time.Millisecond), func(c Config) time.Duration { return c.PulseWidth }, 2 * time.Millisecond},
		{"pulse width too short", WithPulseWidth(100 * time.Microsecond), func(c Config) time.Duration { return c.PulseWidth }, protocol.ProgramPulseWidth},
		{"settle raised", WithSettleDelay(time.Millisecond), func(c Config) time.Duration { return c.SettleDelay }, time.Millisecond},
		{"settle too short", WithSettleDelay(0), func(c Config) time.Duration { return c.SettleDelay }, protocol.ProgramSettleDelay},
		{"copy raised", WithCopyDelay(15 * time.Millisecond), func(c Config) time.Duration { return c.CopyDelay }, 15 * time.Millisecond},
		{"copy too short", WithCopyDelay(time.Millisecond), func(c Config) time.Duration { return c.CopyDelay }, protocol.CopyDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.opt(&cfg)
			assert.Equal(t, tt.expect, tt.field(cfg))
		})
	}
}

func TestWithSleeperIgnoresNil(t *testing.T) {
	cfg := defaultConfig()
	WithSleeper(nil)(&cfg)
	assert.NotNil(t, cfg.Sleeper)

	s := &recordingSleeper{}
	WithSleeper(s)(&cfg)
	cfg.Sleeper.Sleep(time.Second)
	assert.Equal(t, []time.Duration{time.Second}, s.Sleeps())
}

func TestSleeperFunc(t *testing.T) {
	var got time.Duration
	SleeperFunc(func(d time.Duration) { got = d }).Sleep(3 * time.Millisecond)
	assert.Equal(t, 3*time.Millisecond, got)
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Debug("page read", "page", 2)
	logger.Info("page written", "page", 3)
	logger.Error("burn failed", "offset", 5)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=\"page read\" page=2")
	assert.Contains(t, out, "level=INFO msg=\"page written\" page=3")
	assert.Contains(t, out, "level=ERROR msg=\"burn failed\" offset=5")

	assert.NotNil(t, NewSlogLogger(nil))
}
