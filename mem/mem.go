// Package mem implements the "mem:" backend: read/write access to a byte
// buffer owned by the caller, addressed either through a typed *[]byte
// handle or through htslib's legacy pointer-in-URL encoding.
package mem

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"github.com/dnanexus/htslib/herrors"
)

const Scheme = "mem:"

// Buffer is the mem: backend. Write mode appends, reallocating the
// underlying slice with doubling growth as needed; during writing the
// caller's slice length tracks the allocated capacity (mirroring htslib's
// *pmlength == allocated capacity while writing), and Close trims it down to
// the final written size, matching the spec's memory-backend state
// contract. Read mode serves bytes from the slice as given at Open time.
type Buffer struct {
	ptr   *[]byte
	write bool
	pos   int64
	size  int64 // bytes actually written; meaningful only in write mode
}

// New wraps buf directly: the typed, ABI-free constructor the design notes
// recommend as the non-fragile alternative to the pointer-in-URL encoding.
// In write mode, buf's existing contents (if any) are discarded.
func New(buf *[]byte, write bool) (*Buffer, error) {
	if buf == nil {
		return nil, herrors.New(herrors.Invalid, "hopen", fmt.Errorf("mem: nil buffer"))
	}
	b := &Buffer{ptr: buf, write: write}
	if write {
		*buf = (*buf)[:0]
	}
	return b, nil
}

// OpenPointer decodes rawURL's legacy "mem:" encoding into a Buffer.
//
// htslib's ABI embeds the raw machine-word bytes of a pointer-to-buffer-
// pointer (char**) and a pointer-to-length (size_t*) after the "mem:"
// prefix. A Go slice header already bundles pointer, length, and capacity,
// so this port reinterprets that two-pointer ABI as a single embedded
// pointer to a *[]byte: rawURL must be "mem:" followed by exactly
// sizeof(uintptr) bytes holding the native-endian value of that pointer.
// This keeps the "pointer survives the URL string" compatibility contract
// the spec calls out while dropping the C-specific two-pointer shape that
// has no Go equivalent. New is the recommended entry point for Go callers;
// this exists for callers that must round-trip through the textual scheme.
func OpenPointer(rawURL string, write bool) (*Buffer, error) {
	body := rawURL[len(Scheme):]
	ptrSize := int(unsafe.Sizeof(uintptr(0)))
	if len(body) != ptrSize {
		return nil, herrors.New(herrors.Invalid, "hopen",
			fmt.Errorf("mem: URL must encode %d pointer bytes, got %d", ptrSize, len(body)))
	}

	raw := uintptrFromBytes([]byte(body))
	if raw == 0 {
		return nil, herrors.New(herrors.Invalid, "hopen", fmt.Errorf("mem: nil pointer"))
	}

	buf := (*[]byte)(unsafe.Pointer(raw)) //nolint:govet // intentional: decoding the compatibility ABI
	return New(buf, write)
}

// EncodePointer produces the "mem:" URL for buf, the inverse of OpenPointer.
func EncodePointer(buf *[]byte) string {
	return Scheme + string(bytesFromUintptr(uintptr(unsafe.Pointer(buf))))
}

func uintptrFromBytes(b []byte) uintptr {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return uintptr(binary.NativeEndian.Uint64(b))
	}
	return uintptr(binary.NativeEndian.Uint32(b))
}

func bytesFromUintptr(p uintptr) []byte {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		out := make([]byte, 8)
		binary.NativeEndian.PutUint64(out, uint64(p))
		return out
	}
	out := make([]byte, 4)
	binary.NativeEndian.PutUint32(out, uint32(p))
	return out
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.write {
		return 0, herrors.New(herrors.Unsupported, "hread", nil)
	}
	data := *b.ptr
	if b.pos >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	if !b.write {
		return 0, herrors.New(herrors.Unsupported, "hwrite", nil)
	}
	if len(p) == 0 {
		return 0, nil
	}

	needed := b.pos + int64(len(p))
	cur := *b.ptr
	if needed > int64(cap(cur)) {
		newCap := int64(cap(cur))
		if newCap == 0 {
			newCap = 64
		}
		for newCap < needed {
			newCap *= 2
		}
		grown := make([]byte, newCap)
		copy(grown, cur[:b.size])
		cur = grown
	}
	cur = cur[:cap(cur)] // *pmlength tracks allocated capacity while writing
	copy(cur[b.pos:], p)
	b.pos += int64(len(p))
	if b.pos > b.size {
		b.size = b.pos
	}
	*b.ptr = cur
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	length := int64(len(*b.ptr))
	if b.write {
		length = b.size
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		target = length + offset
	default:
		return 0, herrors.New(herrors.Invalid, "hseek", nil)
	}
	if target < 0 {
		return 0, herrors.New(herrors.Invalid, "hseek", nil)
	}
	b.pos = target
	return target, nil
}

// Close trims the caller's buffer down to the final written size, per the
// memory-backend state contract: the buffer survives Close and is owned by
// the caller thereafter.
func (b *Buffer) Close() error {
	if b.write {
		*b.ptr = (*b.ptr)[:b.size]
	}
	return nil
}
