package httpstream

import (
	"context"
	"io"
	"time"
)

// pollInterval bounds a single wait for the next chunk, the Go analogue of
// curlstream.cc's one-second curl_multi_wait bound: if nothing is ready
// within pollInterval, next returns with ok=false and a nil error so the
// caller can check for cancellation (or simply poll again) instead of
// blocking indefinitely on one read.
const pollInterval = time.Second

// fifoChunkSize is the size of each bounded slice the background goroutine
// drains the response body into, mirroring curlstream.cc's FifoBuffer.
const fifoChunkSize = 32 * 1024

// chunk is one bounded read from the response body. Exactly one of data or
// err is set: a data chunk and the terminal error that ends the body are
// always sent as separate, ordered chunks.
type chunk struct {
	data []byte
	err  error
}

// fifo is a FIFO of chunks fed by a background goroutine draining an
// io.ReadCloser in bounded slices, mirroring curlstream.cc's FifoBuffer:
// perform() there fills a buffer from libcurl's write callback while the
// consumer drains it independently on its own schedule. Here the background
// goroutine plays the role of perform() and Reader.Read plays the consumer,
// polling the fifo with a bounded wait instead of curl_multi_wait's
// select() loop.
type fifo struct {
	ch chan chunk
}

// newFifo starts the background drain goroutine over body. The goroutine
// exits once it sends the terminal error chunk and closes ch; it is also
// unblocked by canceling the context tied to the request that produced
// body, which aborts any in-flight Read.
func newFifo(body io.ReadCloser) *fifo {
	f := &fifo{ch: make(chan chunk, 2)}
	go func() {
		defer close(f.ch)
		buf := make([]byte, fifoChunkSize)
		for {
			n, err := body.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				f.ch <- chunk{data: data}
			}
			if err != nil {
				f.ch <- chunk{err: err}
				return
			}
		}
	}()
	return f
}

// next waits up to pollInterval for the next chunk. ok is false when the
// bounded wait elapsed with nothing ready (err is nil; the caller should
// poll again), when ctx was canceled (err is ctx.Err()), or when the channel
// was already closed after its terminal chunk (err is io.ErrClosedPipe).
func (f *fifo) next(ctx context.Context) (chunk, bool, error) {
	select {
	case c, open := <-f.ch:
		if !open {
			return chunk{}, false, io.ErrClosedPipe
		}
		return c, true, nil
	case <-ctx.Done():
		return chunk{}, false, ctx.Err()
	case <-time.After(pollInterval):
		return chunk{}, false, nil
	}
}
