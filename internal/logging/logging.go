// Package logging builds zerolog loggers and adapts them to the
// map-of-fields Logger interface used by the library and transport.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fivetwenty-io/apicaller/internal/constants"
)

// Options selects level, format and colour of a logger.
type Options struct {
	Level  string
	Format string
	Color  bool
}

// New creates a zerolog logger writing to out.
func New(out io.Writer, opts Options) zerolog.Logger {
	level := ParseLevel(opts.Level)

	if opts.Format == constants.LogFormatJSON {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !opts.Color,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a configured level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Adapter exposes a zerolog.Logger through the Debug/Info/Warn/Error
// interface with a fields map.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Debug logs at debug level.
func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level.
func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	a.logger.Error().Fields(fields).Msg(msg)
}
