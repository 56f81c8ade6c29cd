package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Every line carries the service name so aggregated logs from the
// payment core can be told apart from the rest of the platform.
const serviceName = "marketplace-payments"

// New returns the process-wide logger. An unknown level falls back to
// info instead of failing startup; the bad value is flagged on the
// first emitted line.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return build(level, w)
}

// NewWithWriter is New with an explicit sink, for capturing output in tests.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(level, w)
}

func build(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	log := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
	return log
}
