// Package logger holds the process-wide zerolog logger.
//
// Call Init once at startup. Get returns a no-op logger until then so that
// library code and tests never have to care about initialisation order.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	// Level is one of trace, debug, info, warn, error. Unknown values fall back to info.
	Level string
	// Pretty switches to zerolog's console writer instead of JSON lines.
	Pretty bool
	// Output defaults to os.Stderr so command output on stdout stays clean.
	Output io.Writer
}

var (
	mu          sync.RWMutex
	instance    = zerolog.Nop()
	initialized bool
)

// Init builds the singleton logger. Only the first call after start or Reset has an effect.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := ParseLevel(opts.Level)
	instance = zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
	initialized = true

	return instance
}

func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Reset drops the singleton. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = zerolog.Nop()
	initialized = false
}

func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
