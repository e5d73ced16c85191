// Package logger provides the console and no-op ports.Logger adapters.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/lanecrop/pkg/ports"
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

var levelColors = map[ports.LogLevel]string{
	ports.LevelDebug: colorGray,
	ports.LevelWarn:  colorYellow,
	ports.LevelError: colorRed,
}

// output is shared by a logger and every component logger derived from it,
// so lines from concurrent lane workers never interleave.
type output struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	color  bool
}

// ConsoleLogger writes debug and info lines to the out stream and warnings
// and errors to the error stream.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	sink      *output
}

// NewConsole logs to stdout and stderr, with color when stdout is a
// terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stdout.Fd()
	return &ConsoleLogger{
		level: level,
		sink: &output{
			out:    os.Stdout,
			errOut: os.Stderr,
			color:  isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		},
	}
}

// NewConsoleWithWriters logs to the given streams without color.
func NewConsoleWithWriters(level ports.LogLevel, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{level: level, sink: &output{out: out, errOut: errOut}}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log(ports.LevelDebug, msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...interface{})  { l.log(ports.LevelInfo, msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{})  { l.log(ports.LevelWarn, msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log(ports.LevelError, msg, args) }

// WithComponent returns a logger that prefixes each line with [component].
// Nested components are joined with a slash, e.g. [encoder/lane-2].
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	if l.component != "" {
		component = l.component + "/" + component
	}
	return &ConsoleLogger{level: l.level, component: component, sink: l.sink}
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args []interface{}) {
	if level < l.level {
		return
	}

	line := l10n.F(msg, args...)
	color := l.sink.color
	if l.component != "" {
		if color {
			line = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, line)
		} else {
			line = fmt.Sprintf("[%s] %s", l.component, line)
		}
	}
	if c, ok := levelColors[level]; ok && color {
		line = c + line + colorReset
	}

	w := l.sink.out
	if level >= ports.LevelWarn {
		w = l.sink.errOut
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	fmt.Fprintln(w, line)
}

var _ ports.Logger = (*ConsoleLogger)(nil)
