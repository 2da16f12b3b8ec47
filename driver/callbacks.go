package driver

import "time"

// Phases reported through Progress.
const (
	PhaseReading   = "reading"
	PhaseWriting   = "writing"
	PhaseVerifying = "verifying"
	PhaseComplete  = "complete"
)

// Progress contains information about a whole-device operation.
// Passed to ProgressCallback during Dump and Program.
type Progress struct {
	// Phase describes the current operation phase:
	//   "reading"   - Reading pages
	//   "writing"   - Writing pages
	//   "verifying" - Reading back written pages
	//   "complete"  - Operation completed successfully
	Phase string

	// CurrentPage is the number of pages finished in this phase
	CurrentPage int

	// TotalPages is the number of pages the operation covers
	TotalPages int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesTransferred is the total number of page bytes moved so far
	BytesTransferred int

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called after every page of a whole-device operation.
// Implementations should return quickly; the bus is held while they run.
//
// Example:
//
//	drv := driver.New(bus,
//	    driver.WithProgressCallback(func(p driver.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the driver.
// This allows integration with any logging framework; NewSlogLogger adapts
// log/slog.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
