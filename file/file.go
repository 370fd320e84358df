// Package file implements the POSIX file-descriptor backend: the fallback
// hstream backend for any URL without a recognized scheme prefix, and for
// explicit "file://" URLs.
//
// Adapted from OpenListTeam/metaflow's file.fileStreamProcessor: this keeps
// that type's read/write/seek/close shape but drops the sha256 checksum and
// StreamMetadata bookkeeping, which belong to metaflow's domain, not ours.
package file

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/dnanexus/htslib/herrors"
)

// File wraps a single *os.File as an hstream.Backend. Go's os package
// already retries short reads/writes caused by EINTR internally, so unlike
// htslib's hfile_fd.c this backend has no explicit EINTR retry loop of its
// own — there is nothing left for it to do.
type File struct {
	f *os.File
}

// Open opens rawURL for reading or writing. rawURL may be a bare filesystem
// path or a "file://" URL; anything else is a caller error since the scheme
// dispatcher in package hstream only falls back to this backend for
// unrecognized prefixes.
func Open(rawURL string, write bool) (*File, error) {
	path, err := resolvePath(rawURL)
	if err != nil {
		return nil, herrors.New(herrors.Invalid, "hopen", err)
	}

	var f *os.File
	if write {
		f, err = os.Create(path)
	} else {
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, herrors.New(classifyOpenErr(err), "hopen", err)
	}

	return &File{f: f}, nil
}

func resolvePath(rawURL string) (string, error) {
	if len(rawURL) < 7 || rawURL[:7] != "file://" {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host != "" {
		return filepath.Join(u.Host, u.Path), nil
	}
	return u.Path, nil
}

func classifyOpenErr(err error) herrors.Kind {
	switch {
	case os.IsNotExist(err):
		return herrors.NotFound
	case os.IsPermission(err):
		return herrors.PermissionDenied
	default:
		return herrors.IoError
	}
}

func (b *File) Read(p []byte) (int, error) {
	return b.f.Read(p)
}

func (b *File) Write(p []byte) (int, error) {
	return b.f.Write(p)
}

func (b *File) Seek(offset int64, whence int) (int64, error) {
	return b.f.Seek(offset, whence)
}

func (b *File) Close() error {
	return b.f.Close()
}
