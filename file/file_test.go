package file

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteSeek(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")

	w, err := Open(path, true)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello, world!"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path, false)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	pos, err := r.Seek(7, io.SeekStart)
	require.NoError(t, err)
	assert.EqualValues(t, 7, pos)

	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf[:n]))
}

func TestOpenMissingFails(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), false)
	assert.True(t, os.IsNotExist(errUnwrap(err)))
}

// errUnwrap peels back to the innermost cause (the syscall.Errno beneath the
// *os.PathError) so the test can use the standard library's own
// classification rather than reaching into herrors internals.
func errUnwrap(err error) error {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if u, ok := err.(unwrapper); ok {
			err = u.Unwrap()
			continue
		}
		return err
	}
	return err
}

func TestFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	r, err := Open("file://"+path, false)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))
}
