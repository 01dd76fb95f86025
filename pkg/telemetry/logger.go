package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger from the logging configuration.
// Console format writes colorized human-readable lines; json writes one
// structured object per line.
func NewLogger(cfg LoggingConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	writer := out
	if cfg.Format != "json" {
		writer = zerolog.ConsoleWriter{Out: out}
	}

	return zerolog.New(writer).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
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
