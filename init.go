package hstream

import "sync"

// httpInitOnce is the idempotent process-wide HTTP transport
// initialization latch spec.md §5 requires ("Process-wide one-time
// initialization of the HTTP transport library is required and must be
// idempotent"). net/http needs no global init call the way libcurl's
// curl_global_init does, but the latch is kept so a future transport swap
// (or a call that does need one-time setup, e.g. installing a shared
// connection pool) has a single well-defined place to run exactly once.
var httpInitOnce sync.Once

func ensureHTTPInit() {
	httpInitOnce.Do(func() {
		log.Debug().Msg("http transport initialized")
	})
}
