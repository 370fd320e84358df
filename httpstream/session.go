package httpstream

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dnanexus/htslib/herrors"
)

// session is one HTTP request/response lifetime, per spec.md's "Session
// (HTTP)" glossary entry: a start offset S, a delivered-bytes counter D, and
// a terminal status once the response completes or errors.
type session struct {
	start     int64 // S
	delivered int64 // D

	resp *http.Response
	fifo *fifo

	// total is the known total length of the remote resource, or -1 if
	// unknown. It is learned from Content-Length (ofs==0) or a
	// Content-Range response header (ofs>0, or a 416 response).
	total int64
}

// openSession starts a session at logical offset ofs. If ofs > 0 it sends
// Range: bytes=ofs-, per spec.md §4.4/§6.
func openSession(ctx context.Context, client *http.Client, url string, ofs int64, extra http.Header) (*session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, herrors.New(herrors.Invalid, "hopen", err)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Del("Range")
	if ofs > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", ofs))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, herrors.New(herrors.IoError, "hopen", err)
	}

	s := &session{start: ofs, total: -1}

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		resp.Body.Close()
		total := totalFromContentRange(resp.Header.Get("Content-Range"))
		if total >= 0 && ofs == total {
			// Exactly at end of stream: treated as EOF, not an error.
			s.total = total
			s.resp = nil
			return s, nil
		}
		return nil, herrors.New(herrors.Invalid, "hopen",
			fmt.Errorf("HTTP 416 range not satisfiable at offset %d", ofs))

	case resp.StatusCode == http.StatusOK:
		if ofs > 0 {
			resp.Body.Close()
			return nil, statusError("hopen", resp.StatusCode)
		}
		if resp.ContentLength >= 0 {
			s.total = resp.ContentLength
		}

	case resp.StatusCode == http.StatusPartialContent:
		// A 206 with no Range request is unusual but not disallowed.
		if total := totalFromContentRange(resp.Header.Get("Content-Range")); total >= 0 {
			s.total = total
		}

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if ofs > 0 {
			resp.Body.Close()
			return nil, statusError("hopen", resp.StatusCode)
		}

	default:
		resp.Body.Close()
		return nil, statusError("hopen", resp.StatusCode)
	}

	s.resp = resp
	s.fifo = newFifo(resp.Body)
	return s, nil
}

// totalFromContentRange parses "bytes start-end/total" or "bytes */total",
// returning -1 if total is absent or unparseable.
func totalFromContentRange(v string) int64 {
	if v == "" {
		return -1
	}
	idx := strings.LastIndexByte(v, '/')
	if idx < 0 || idx == len(v)-1 {
		return -1
	}
	totalStr := v[idx+1:]
	if totalStr == "*" {
		return -1
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil {
		return -1
	}
	return total
}

// close closes the response body, which aborts the fifo's background drain
// goroutine's in-flight Read, and then drains any chunks that goroutine still
// sends before it exits — otherwise, if the fifo's small buffer is already
// full of chunks nobody consumed (e.g. a Seek abandoning a session
// mid-stream), that goroutine would block on its final send forever.
func (s *session) close() {
	if s.resp != nil {
		s.resp.Body.Close()
		s.resp = nil
	}
	if s.fifo != nil {
		f := s.fifo
		s.fifo = nil
		go func() {
			for range f.ch {
			}
		}()
	}
}
