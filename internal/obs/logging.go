// Package obs contains observability utilities such as logging.
package obs

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger: JSON to stdout, RFC3339 timestamps.
// Components receive sub-loggers via log.With().Str("component", ...).
func NewLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).Level(lvl).With().
		Timestamp().
		Logger()
}
