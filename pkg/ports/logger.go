// Package ports defines the interfaces between the lane pipeline and its
// adapters: media components, logging, metrics and debug output.
package ports

import "fmt"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-frame and native library diagnostics.
	LevelDebug LogLevel = iota
	// LevelInfo is for run progress.
	LevelInfo
	// LevelWarn is for skipped regions, failed lanes and other
	// recoverable problems.
	LevelWarn
	// LevelError is for problems that abort the run.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = [...]string{"debug", "info", "warn", "error", "quiet"}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelQuiet {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLogLevel maps a --log-level value to a LogLevel. "warning" is
// accepted as an alias of "warn".
func ParseLogLevel(s string) (LogLevel, error) {
	if s == "warning" {
		return LevelWarn, nil
	}
	for i, name := range levelNames {
		if s == name {
			return LogLevel(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrArgument, s)
}

// Logger is the leveled logger shared by every lanecrop component. msg is
// a translatable format key; implementations must be safe for concurrent
// use because lane reports are built in parallel.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the
	// component name ("decoder", "router", "encoder", ...).
	WithComponent(component string) Logger
}
