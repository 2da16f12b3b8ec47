package driver

import "log/slog"

// SlogLogger writes driver log lines to an slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a Logger backed by logger, or slog.Default() when nil.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *SlogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogLogger)(nil)
