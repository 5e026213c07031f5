// Package logging builds the process slog.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options select the handler.
type Options struct {
	// Writer receives log output. Defaults to os.Stderr.
	Writer io.Writer
	Level  slog.Leveler
	// JSON selects slog's JSON handler instead of tint's colored text.
	JSON    bool
	NoColor bool
}

// New returns a logger writing to opts.Writer.
func New(opts Options) *slog.Logger {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{Level: opts.Level})
	} else {
		h = tint.NewHandler(opts.Writer, &tint.Options{
			Level:      opts.Level,
			TimeFormat: time.DateTime,
			NoColor:    opts.NoColor || !isTerminal(opts.Writer),
		})
	}
	return slog.New(h)
}

// FromConfig builds a logger from a level name and a format of "text" or
// "json".
func FromConfig(w io.Writer, level, format string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return New(Options{Writer: w, Level: l, JSON: strings.EqualFold(format, "json")}), nil
}

// ParseLevel maps a level name such as "debug" or "WARN" onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
