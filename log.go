package dict

import (
	"os"

	"github.com/rs/zerolog"
)

// Non-fatal conditions (inserting on an existing key, removing an
// absent key, skipping a nil payload during merge) are reported here
// rather than as errors.
var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().Timestamp().Logger()

// SetLogger redirects the package's side-channel notifications, e.g.
// to a test writer or a shared application logger.
func SetLogger(l zerolog.Logger) {
	logger = l
}
