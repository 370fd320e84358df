package hstream

import (
	"io"

	"github.com/dnanexus/htslib/herrors"
)

// DefaultBufferSize is the capacity of a Stream's internal buffer when Open
// is used. htslib suggests at least 32 KiB; this matches that suggestion.
const DefaultBufferSize = 32 * 1024

// Stream is the buffered byte-stream abstraction described by the hStream
// design: a single read/write buffer with explicit offset accounting, peek,
// flush, seek, and a sticky error, sitting in front of exactly one Backend.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	buf   []byte
	begin int
	end   int

	mode  Mode
	atEOF bool
	err   error

	// offset is the absolute logical position of buf[0], the start of the
	// buffer window, not of the caller's cursor (which is offset+begin in
	// read mode). Keeping it here (rather than at the cursor) makes
	// Peek trivially non-mutating and within-buffer seeks free.
	offset int64

	backend Backend
}

// Open selects a backend by matching rawURL's scheme prefix ("data:",
// "mem:", "http://", "https://", otherwise a filesystem path) and opens a
// Stream over it. mode is "r" or "w".
func Open(rawURL string, mode string) (*Stream, error) {
	m, err := parseMode(mode)
	if err != nil {
		return nil, err
	}

	factory, _ := dispatch(rawURL)
	if factory == nil {
		return nil, herrors.New(herrors.Invalid, "hopen", nil)
	}

	backend, err := factory(rawURL, m)
	if err != nil {
		return nil, err
	}

	return newStream(backend, m), nil
}

// NewStream wraps an already-open Backend in the buffered layer. Backend
// packages that expose a typed constructor (e.g. mem.New) return a Backend a
// caller can hand here directly, bypassing URL parsing entirely.
func NewStream(backend Backend, mode Mode) *Stream {
	return newStream(backend, mode)
}

func newStream(backend Backend, mode Mode) *Stream {
	return &Stream{
		buf:     make([]byte, DefaultBufferSize),
		mode:    mode,
		backend: backend,
	}
}

// Err returns the stream's sticky error, or nil if the stream is healthy.
// Equivalent to htslib's herrno.
func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return s.err
}

// Read copies up to len(p) buffered bytes into p, refilling from the backend
// at most once per call when the buffer is empty. It returns 0 bytes with
// io.EOF at true end of stream; the only other way to get 0 bytes is a
// backend read that itself returned no bytes and no error, which Read passes
// on as (0, nil). Read never blocks past a single backend Read call, so short
// reads (0 < n < len(p)) are expected and must be tolerated by callers, per
// the io.Reader contract.
func (s *Stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.mode != ModeRead {
		return 0, s.fail(herrors.New(herrors.Unsupported, "hread", nil))
	}
	if len(p) == 0 {
		return 0, nil
	}

	if s.begin == s.end && !s.atEOF {
		if err := s.refill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, s.buf[s.begin:s.end])
	s.begin += n
	if n == 0 && s.atEOF {
		return 0, io.EOF
	}
	return n, nil
}

// refill discards the (empty) buffer window and issues a single backend read
// into the whole buffer capacity, per the buffer refill contract in §4.1.
func (s *Stream) refill() error {
	r, ok := asReader(s.backend)
	if !ok {
		return s.fail(unsupported("hread"))
	}

	s.offset += int64(s.end)
	s.begin, s.end = 0, 0

	n, err := r.Read(s.buf)
	if n > 0 {
		s.end = n
	}
	if err == io.EOF {
		s.atEOF = true
		return nil
	}
	if err != nil {
		return s.fail(herrors.New(herrors.IoError, "hread", err))
	}
	if n == 0 {
		// A zero-length, error-free read means "nothing right now, but
		// not EOF"; the caller sees a short read of 0 and may retry.
		s.atEOF = false
	}
	return nil
}

// Peek returns up to n bytes from the stream without advancing the logical
// offset: Tell returns the same value before and after any Peek. If fewer
// than n bytes are currently buffered, Peek slides the buffered bytes to the
// front and issues further backend reads until n bytes are available, EOF is
// reached, or an error occurs. Peek never returns more than the buffer's
// capacity, and may return fewer than n bytes even when more exist, if a
// backend read returns no bytes and no error (a short but non-empty backend
// read does not stop it); callers must tolerate short peeks.
func (s *Stream) Peek(n int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.mode != ModeRead {
		return nil, s.fail(herrors.New(herrors.Unsupported, "hpeek", nil))
	}
	if n > len(s.buf) {
		n = len(s.buf)
	}

	for s.end-s.begin < n && !s.atEOF {
		if s.begin > 0 {
			copy(s.buf, s.buf[s.begin:s.end])
			s.offset += int64(s.begin)
			s.end -= s.begin
			s.begin = 0
		}
		if s.end == len(s.buf) {
			break
		}

		r, ok := asReader(s.backend)
		if !ok {
			return nil, s.fail(unsupported("hpeek"))
		}
		got, err := r.Read(s.buf[s.end:])
		if got > 0 {
			s.end += got
		}
		if err == io.EOF {
			s.atEOF = true
			break
		}
		if err != nil {
			return nil, s.fail(herrors.New(herrors.IoError, "hpeek", err))
		}
		if got == 0 {
			// No progress this call; return what we have rather than
			// spin.
			break
		}
	}

	avail := s.end - s.begin
	if n > avail {
		n = avail
	}
	return s.buf[s.begin : s.begin+n], nil
}

// ReadByte reads and returns a single byte, or io.EOF at end of stream.
// Equivalent to htslib's hgetc.
func (s *Stream) ReadByte() (byte, error) {
	var b [1]byte
	n, err := s.Read(b[:])
	if n == 1 {
		return b[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// Write stages p in the buffer, issuing a backend write when the buffer
// fills, and returns len(p) on success. It never returns a short write
// without an error.
func (s *Stream) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.mode != ModeWrite {
		return 0, s.fail(herrors.New(herrors.Unsupported, "hwrite", nil))
	}

	total := len(p)
	for len(p) > 0 {
		room := len(s.buf) - s.end
		if room == 0 {
			if err := s.drain(); err != nil {
				return 0, err
			}
			room = len(s.buf) - s.end
		}
		n := copy(s.buf[s.end:], p)
		s.end += n
		p = p[n:]
	}
	return total, nil
}

// drain pushes the buffered pending bytes to the backend in a single write
// call and resets the buffer to empty.
func (s *Stream) drain() error {
	if s.end == s.begin {
		return nil
	}
	w, ok := asWriter(s.backend)
	if !ok {
		return s.fail(unsupported("hwrite"))
	}

	n, err := w.Write(s.buf[s.begin:s.end])
	s.offset += int64(n)
	if err != nil {
		return s.fail(herrors.New(herrors.IoError, "hwrite", err))
	}
	if n < s.end-s.begin {
		return s.fail(herrors.New(herrors.IoError, "hwrite", io.ErrShortWrite))
	}
	s.begin, s.end = 0, 0
	return nil
}

// WriteByte writes a single byte. Equivalent to htslib's hputc.
func (s *Stream) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// WriteString writes s as a byte sequence. Equivalent to htslib's hputs.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Flush drains any pending writes to the backend and, if the backend
// implements Flusher, asks it to synchronize to durable storage.
// Equivalent to htslib's hflush.
func (s *Stream) Flush() error {
	if s.err != nil {
		return s.err
	}
	if s.mode != ModeWrite {
		return nil
	}
	if err := s.drain(); err != nil {
		return err
	}
	if f, ok := asFlusher(s.backend); ok {
		if err := f.Flush(); err != nil {
			return s.fail(herrors.New(herrors.IoError, "hflush", err))
		}
	}
	return nil
}

// Seek repositions the stream. In write mode it flushes first. In read mode,
// if the target offset falls within the currently buffered window the
// buffer is repositioned without a backend call; otherwise the buffer is
// discarded and the backend is seeked directly. Backends without seek
// support fail with Kind = NotSeekable.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}

	if s.mode == ModeWrite {
		if err := s.drain(); err != nil {
			return 0, err
		}
		seeker, ok := asSeeker(s.backend)
		if !ok {
			return 0, s.fail(herrors.New(herrors.NotSeekable, "hseek", nil))
		}
		pos, err := seeker.Seek(offset, whence)
		if err != nil {
			return 0, s.fail(classifySeekErr(err))
		}
		s.offset = pos
		return pos, nil
	}

	// SEEK_END's absolute position isn't knowable from the buffer alone,
	// so it always falls through to the backend.
	if whence != io.SeekEnd {
		target, ok := s.resolveTarget(offset, whence)
		if ok && target >= s.offset+int64(s.begin) && target <= s.offset+int64(s.end) {
			s.begin = int(target - s.offset)
			return target, nil
		}
		if ok {
			// The backend's own position is past the buffered bytes, so
			// it is given the absolute target rather than a relative one.
			offset, whence = target, io.SeekStart
		}
	}

	seeker, ok := asSeeker(s.backend)
	if !ok {
		return 0, s.fail(herrors.New(herrors.NotSeekable, "hseek", nil))
	}
	pos, err := seeker.Seek(offset, whence)
	if err != nil {
		return 0, s.fail(classifySeekErr(err))
	}
	s.begin, s.end = 0, 0
	s.atEOF = false
	s.offset = pos
	return pos, nil
}

// resolveTarget computes the absolute logical offset a SeekCurrent/SeekStart
// request maps to, without performing the seek, so the within-buffer fast
// path can be tried first.
func (s *Stream) resolveTarget(offset int64, whence int) (int64, bool) {
	switch whence {
	case io.SeekStart:
		return offset, true
	case io.SeekCurrent:
		return s.Tell() + offset, true
	default:
		return 0, false
	}
}

func classifySeekErr(err error) error {
	if e, ok := err.(*herrors.Error); ok {
		return e
	}
	return herrors.New(herrors.IoError, "hseek", err)
}

// Tell returns the caller's current logical offset. Equivalent to htslib's
// htell.
func (s *Stream) Tell() int64 {
	if s.mode == ModeWrite {
		return s.offset + int64(s.end-s.begin)
	}
	return s.offset + int64(s.begin)
}

// Close flushes pending writes, closes the backend, and releases the
// buffer. It returns a non-nil error if either the flush or the backend
// close failed, but always releases resources. Equivalent to htslib's
// hclose.
func (s *Stream) Close() error {
	var flushErr error
	if s.mode == ModeWrite && s.err == nil {
		flushErr = s.Flush()
	}

	closeErr := s.backend.Close()

	s.buf = nil
	s.begin, s.end = 0, 0

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
