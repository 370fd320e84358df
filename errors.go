package hstream

import "github.com/dnanexus/htslib/herrors"

// Kind classifies the reason a Stream operation failed. It is a re-export of
// herrors.Kind so callers never need to import the leaf package directly.
type Kind = herrors.Kind

// Error is the concrete error type returned by this package and its
// backends.
type Error = herrors.Error

const (
	NotFound         = herrors.NotFound
	PermissionDenied = herrors.PermissionDenied
	Timeout          = herrors.Timeout
	TryAgain         = herrors.TryAgain
	Invalid          = herrors.Invalid
	NotSeekable      = herrors.NotSeekable
	Unsupported      = herrors.Unsupported
	IoError          = herrors.IoError
	Truncated        = herrors.Truncated
)

// IsKind reports whether err (or a cause it wraps) is a *Error of the given
// Kind. It is the idiomatic replacement for inspecting htslib's herrno().
func IsKind(err error, kind Kind) bool {
	return herrors.Is(err, kind)
}
