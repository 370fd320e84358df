package hstream

import (
	"os"

	"github.com/rs/zerolog"
)

// log is the package-wide logger, grounded on
// usherasnick-Useful-Go-Gadgets' use of github.com/rs/zerolog for its
// stream and consumer packages. The buffered Stream type logs nothing on
// its hot path (matching the restraint shown by OpenListTeam/metaflow's
// backends, which also don't log per read/write); only the one-time HTTP
// transport init logs through it. Package httpstream, including its
// resumption path, logs through zerolog's global logger, which SetLogger
// does not change.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetLogger replaces the package-wide logger, e.g. to redirect to a
// structured JSON sink in production.
func SetLogger(l zerolog.Logger) {
	log = l
}
