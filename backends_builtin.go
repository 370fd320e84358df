package hstream

import (
	"context"

	"github.com/dnanexus/htslib/data"
	"github.com/dnanexus/htslib/file"
	"github.com/dnanexus/htslib/httpstream"
	"github.com/dnanexus/htslib/mem"
)

// init registers the four built-in backends with the scheme dispatcher,
// generalizing OpenListTeam/metaflow's pattern of one init()-time
// RegisterFactoryBuilder call per backend (there, scattered one per backend
// package via each package's own init()). Because the backend packages here
// are leaf packages that only depend on herrors — never on this package —
// registration has to happen from this side to avoid an import cycle; the
// backend packages remain free to be constructed and used directly too
// (mem.New, file.Open, httpstream.Open, ...), which is exactly what lets
// OpenMemoryBuffer below sidestep the dispatcher entirely.
func init() {
	Register(data.Scheme, func(rawURL string, mode Mode) (Backend, error) {
		return data.Open(rawURL, mode == ModeWrite)
	})

	Register(mem.Scheme, func(rawURL string, mode Mode) (Backend, error) {
		return mem.OpenPointer(rawURL, mode == ModeWrite)
	})

	httpFactory := func(rawURL string, mode Mode) (Backend, error) {
		if mode == ModeWrite {
			return nil, unsupported("hopen")
		}
		ensureHTTPInit()
		return httpstream.Open(context.Background(), rawURL, 0, httpstream.DefaultConfig())
	}
	Register(httpstream.Scheme, httpFactory)
	Register(httpstream.SchemeTLS, httpFactory)

	Register("file:", func(rawURL string, mode Mode) (Backend, error) {
		return file.Open(rawURL, mode == ModeWrite)
	})
}

// OpenMemoryBuffer opens a Stream directly over buf, bypassing the mem:
// pointer-in-URL encoding entirely. This is the typed constructor the
// design notes call for as the non-fragile alternative.
func OpenMemoryBuffer(buf *[]byte, mode string) (*Stream, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}
	backend, err := mem.New(buf, m == ModeWrite)
	if err != nil {
		return nil, err
	}
	return newStream(backend, m), nil
}
