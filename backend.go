package hstream

import (
	"io"

	"github.com/dnanexus/htslib/herrors"
)

// Backend is the capability bundle a concrete byte source implements. Only
// Close is mandatory; the other capabilities are expressed as ordinary Go
// interfaces and probed with a type assertion, the idiomatic rendering of
// htslib's "function pointer may be null" backend struct. A capability that
// is absent surfaces as a Kind = Unsupported error (Kind = NotSeekable for a
// missing seek) rather than a nil dereference.
type Backend interface {
	io.Closer
}

// Flusher is implemented by backends that need an explicit signal to drain
// buffered writes to durable storage. Backends without write-side buffering
// of their own (the common case) simply don't implement it.
type Flusher interface {
	Flush() error
}

func asReader(b Backend) (io.Reader, bool) {
	r, ok := b.(io.Reader)
	return r, ok
}

func asWriter(b Backend) (io.Writer, bool) {
	w, ok := b.(io.Writer)
	return w, ok
}

func asSeeker(b Backend) (io.Seeker, bool) {
	s, ok := b.(io.Seeker)
	return s, ok
}

func asFlusher(b Backend) (Flusher, bool) {
	f, ok := b.(Flusher)
	return f, ok
}

func unsupported(op string) error {
	return herrors.New(herrors.Unsupported, op, nil)
}
