// Package libav implements the decoder, frame router and lane encoder on
// top of the FFmpeg libraries through go-astiav.
package libav

import (
	"strings"
	"sync"

	astiav "github.com/asticode/go-astiav"

	"github.com/user/lanecrop/pkg/ports"
)

var (
	initMu      sync.Mutex
	initialized bool
)

// Init configures process-wide FFmpeg state. When verbose is set, FFmpeg's
// own log is forwarded to logger at debug level; otherwise only fatal
// messages are emitted. Calling Init again before Shutdown is a no-op.
func Init(logger ports.Logger, verbose bool) {
	initMu.Lock()
	defer initMu.Unlock()
	if initialized {
		return
	}

	if verbose {
		log := logger.WithComponent("ffmpeg")
		astiav.SetLogLevel(astiav.LogLevelInfo)
		astiav.SetLogCallback(func(c astiav.Classer, l astiav.LogLevel, fmt, msg string) {
			msg = strings.TrimSpace(msg)
			if msg == "" {
				return
			}
			log.Debug("%s", msg)
		})
	} else {
		astiav.SetLogLevel(astiav.LogLevelFatal)
	}
	initialized = true
}

// Shutdown silences FFmpeg and detaches the log callback.
func Shutdown() {
	initMu.Lock()
	defer initMu.Unlock()
	if !initialized {
		return
	}
	astiav.SetLogLevel(astiav.LogLevelQuiet)
	astiav.SetLogCallback(func(astiav.Classer, astiav.LogLevel, string, string) {})
	initialized = false
}
