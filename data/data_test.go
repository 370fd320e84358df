package data

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndSeek(t *testing.T) {
	r, err := Open("data:hello, world!\n", false)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 300)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!\n", string(buf[:n]))

	_, err = r.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	pos, err := r.Seek(7, io.SeekStart)
	require.NoError(t, err)
	assert.EqualValues(t, 7, pos)

	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "world!\n", string(buf[:n]))
}

func TestWriteUnsupported(t *testing.T) {
	_, err := Open("data:abc", true)
	assert.Error(t, err)
}
