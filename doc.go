// Package hstream provides a uniform, buffered byte-stream abstraction over
// heterogeneous sources: local files, in-memory buffers, data: URLs, and
// HTTP/HTTPS resources. It generalizes htslib's hFILE layer: hopen becomes
// Open, hread/hpeek/hwrite become methods on *Stream, and the HTTP backend
// (package httpstream) transparently resumes a truncated response by
// reissuing a byte-range request at the last delivered offset.
//
// A Stream is not safe for concurrent use; it is owned by a single caller
// for its lifetime, mirroring htslib's single-threaded hFILE contract.
package hstream
