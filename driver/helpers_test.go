package driver

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/moffa90/go-w1eprom/protocol"
	"github.com/moffa90/go-w1eprom/sim"
)

// Family codes of the registered chips.
const (
	famDS2502 = 0x09
	famDS2505 = 0x0B
	famDS2430 = 0x14
	famDS2431 = 0x2D
	famDS2433 = 0x23
)

func addrOf(family byte, last byte) protocol.Address {
	return protocol.NewAddress(family, [protocol.SerialSize]byte{0x12, 0x34, 0x56, 0x78, 0x9A, last})
}

func newChip(t *testing.T, family byte) sim.Chip {
	t.Helper()
	c, err := sim.NewChip(addrOf(family, 0x01))
	require.NoError(t, err)
	return c
}

type recordingSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *recordingSleeper) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
}

func (s *recordingSleeper) Sleeps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}

type recordingPin struct {
	levels []gpio.Level
	err    error
}

func (p *recordingPin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.levels = append(p.levels, l)
	return nil
}

// MockLogger collects log lines for assertions.
type MockLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *MockLogger) log(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, kv))
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) { l.log("DEBUG", msg, kv) }
func (l *MockLogger) Info(msg string, kv ...interface{})  { l.log("INFO", msg, kv) }
func (l *MockLogger) Error(msg string, kv ...interface{}) { l.log("ERROR", msg, kv) }

func (l *MockLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// bound returns a driver already bound to chip on a fresh bus.
func bound(t *testing.T, chip sim.Chip, opts ...Option) (*Driver, *sim.Bus, *recordingSleeper) {
	t.Helper()
	bus := sim.NewBus(chip)
	sleeper := &recordingSleeper{}
	drv := New(bus, append([]Option{WithSleeper(sleeper)}, opts...)...)
	drv.Bind(chip.Address())
	return drv, bus, sleeper
}

func pattern(seed byte) protocol.Page {
	var p protocol.Page
	for i := range p {
		p[i] = seed + byte(i)*3
	}
	return p
}

func filled(b byte) protocol.Page {
	var p protocol.Page
	for i := range p {
		p[i] = b
	}
	return p
}

func bytesOf(p protocol.Page) []byte {
	return p[:]
}
