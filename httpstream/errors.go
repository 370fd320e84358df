package httpstream

import (
	"fmt"
	"net/http"

	"github.com/dnanexus/htslib/herrors"
)

// mapStatus classifies a non-2xx HTTP response per spec.md §6/§7. It
// mirrors curlstream.cc's open_helper errno switch, rendered as the Kind
// taxonomy instead of errno values.
func mapStatus(code int) herrors.Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusProxyAuthRequired:
		return herrors.PermissionDenied
	case http.StatusNotFound, http.StatusGone:
		return herrors.NotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return herrors.Timeout
	case http.StatusServiceUnavailable:
		return herrors.TryAgain
	default:
		if code >= 400 && code < 500 {
			return herrors.Invalid
		}
		return herrors.IoError
	}
}

func statusError(op string, code int) error {
	return herrors.New(mapStatus(code), op, fmt.Errorf("HTTP response code %d", code))
}
