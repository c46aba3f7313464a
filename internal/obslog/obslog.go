// Package obslog builds the per-run structured logger that every engine run
// and sweep worker holds (the Engine keeps it; EngineContext has no logger
// field). There is no package-level
// logger and no use of zerolog's global logger: each run gets its own
// *zerolog.Logger instance, so parallel sweep workers never share state or
// race on a shared writer.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the wire shape of log output.
type Format string

const (
	// FormatConsole is zerolog's pretty console writer, for interactive CLI
	// use (cmd/backtestlab run/sweep run by a human at a terminal).
	FormatConsole Format = "console"
	// FormatJSON is one compact JSON object per line, so concurrent sweep
	// workers can write to the same stream without interleaving mid-record.
	FormatJSON Format = "json"
)

// Options configures a run's logger.
type Options struct {
	Format Format
	Level  zerolog.Level
	Writer io.Writer // defaults to os.Stderr
}

// New builds a logger for one run, tagged with the given component name.
func New(component string, opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(opts.Level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// ForSweepWorker builds a worker-tagged JSON logger, always JSON regardless
// of the parent run's format, so concurrent workers never interleave a
// record mid-line.
func ForSweepWorker(workerID int, opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(opts.Level).
		With().
		Timestamp().
		Str("component", "sweep_worker").
		Int("worker_id", workerID).
		Logger()
}

// ParseLevel maps a config string ("debug","info","warn","error") to a
// zerolog.Level, defaulting to Info on anything unrecognized.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
