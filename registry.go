package hstream

import (
	"fmt"
	"strings"

	"github.com/dnanexus/htslib/herrors"
)

// Mode selects whether a Stream is opened for reading or writing. hStream
// never mixes the two within a single stream lifetime.
type Mode int

const (
	// ModeRead opens the stream for reading.
	ModeRead Mode = iota
	// ModeWrite opens the stream for writing.
	ModeWrite
)

func parseMode(mode string) (Mode, error) {
	switch mode {
	case "r":
		return ModeRead, nil
	case "w":
		return ModeWrite, nil
	default:
		return 0, herrors.New(herrors.Invalid, "hopen", fmt.Errorf("unrecognized mode %q", mode))
	}
}

// Factory constructs a Backend for a URL already known to belong to the
// scheme it was registered under.
type Factory func(rawURL string, mode Mode) (Backend, error)

var schemeFactories = make(map[string]Factory)

// Register associates a Factory with a URL scheme prefix (e.g. "data:",
// "mem:", "http:"). It generalizes OpenListTeam/metaflow's
// RegisterFactoryBuilder/CreateStream map dispatch; see backends_builtin.go's
// init() for why the registration calls live there instead of in each
// backend package.
//
// Register panics on a duplicate scheme; that can only happen from a
// programming error at process startup, never at request time.
func Register(scheme string, factory Factory) {
	if _, exists := schemeFactories[scheme]; exists {
		panic("hstream: duplicate backend registered for scheme " + scheme)
	}
	schemeFactories[scheme] = factory
}

// dispatch selects the registered Factory whose scheme prefixes rawURL. A
// bare filesystem path (no recognized scheme prefix) always falls through to
// the "file:" factory, matching htslib's "otherwise -> file backend" rule.
func dispatch(rawURL string) (Factory, string) {
	for scheme, factory := range schemeFactories {
		if strings.HasPrefix(rawURL, scheme) {
			return factory, scheme
		}
	}
	return schemeFactories["file:"], "file:"
}
