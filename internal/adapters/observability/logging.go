package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process-wide zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer;
// everything else emits JSON for log shipping.
func NewLogger(env string) zerolog.Logger {
	if env == "dev" || env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Str("service", "wanderwise").Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "wanderwise").Logger()
}
