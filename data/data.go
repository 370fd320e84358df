// Package data implements the "data:" URL backend: an immutable, read-only
// in-memory byte source whose content is the literal bytes following the
// "data:" prefix (no percent-decoding, per the base case in the spec).
package data

import (
	"io"

	"github.com/dnanexus/htslib/herrors"
)

const Scheme = "data:"

// Reader is a read-only, seekable view over an immutable byte slice.
type Reader struct {
	data []byte
	pos  int64
}

// Open parses rawURL (which must start with Scheme) into a Reader over its
// literal payload.
func Open(rawURL string, write bool) (*Reader, error) {
	if write {
		return nil, herrors.New(herrors.Unsupported, "hopen", nil)
	}
	return &Reader{data: []byte(rawURL[len(Scheme):])}, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += int64(n)
	return n, nil
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	case io.SeekEnd:
		target = int64(len(r.data)) + offset
	default:
		return 0, herrors.New(herrors.Invalid, "hseek", nil)
	}
	if target < 0 {
		return 0, herrors.New(herrors.Invalid, "hseek", nil)
	}
	r.pos = target
	return target, nil
}

func (r *Reader) Close() error {
	return nil
}
