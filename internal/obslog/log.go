// Package obslog is hotpath's own internal operational logger: the
// profiler's bookkeeping (dropped samples, reporter failures, thread
// monitor faults) needs somewhere to go that isn't the metrics pipeline
// itself. Grounded directly on github.com/rs/zerolog rather than the
// teacher's logiface facade, since logiface's pluggable-backend abstraction
// exists to let an application swap logging backends without touching call
// sites -- useful for a library with many consumers, but overkill for a
// profiler's own fixed, internal diagnostic stream that never needs a
// second backend. See DESIGN.md.
package obslog

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColorDefault()}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
	logger.Store(&l)
}

func noColorDefault() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// Configure replaces the process-wide logger, honoring HOTPATH_LOG_LEVEL
// (trace|debug|info|warn|error|off) and an optional alternate writer (tests
// supply a buffer; production uses os.Stderr).
func Configure(levelName string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	level := parseLevel(levelName)
	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: noColorDefault()}).
		With().Timestamp().Logger().
		Level(level)
	logger.Store(&l)
}

func parseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

func current() *zerolog.Logger { return logger.Load() }

func Trace() *zerolog.Event { return current().Trace() }
func Debug() *zerolog.Event { return current().Debug() }
func Info() *zerolog.Event  { return current().Info() }
func Warn() *zerolog.Event  { return current().Warn() }
func Error() *zerolog.Event { return current().Error() }
