// Package logging builds the zerolog loggers used across pybridge.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables that override Options.
const (
	EnvLevel  = "PYBRIDGE_LOG_LEVEL"
	EnvFormat = "PYBRIDGE_LOG_FORMAT"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures a logger. Zero values mean warn level, console format
// and stderr.
type Options struct {
	Level  string
	Format string
	Out    io.Writer
}

// New builds a logger from opts, applying environment overrides.
func New(opts Options) (zerolog.Logger, error) {
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		opts.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		opts.Format = v
	}
	if opts.Level == "" {
		opts.Level = zerolog.WarnLevel.String()
	}
	if opts.Out == nil {
		opts.Out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}

	var w io.Writer
	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{Out: opts.Out, TimeFormat: time.RFC3339}
	case FormatJSON:
		w = opts.Out
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: must be %s or %s", opts.Format, FormatConsole, FormatJSON)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "pybridge").Logger(), nil
}
