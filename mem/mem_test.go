package mem

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedRoundTrip(t *testing.T) {
	var buf []byte

	w, err := New(&buf, true)
	require.NoError(t, err)
	n, err := w.Write([]byte("hello, world!"))
	require.NoError(t, err)
	assert.Equal(t, 13, n)
	require.NoError(t, w.Close())
	assert.Len(t, buf, 13)

	r, err := New(&buf, false)
	require.NoError(t, err)
	defer r.Close()

	out := make([]byte, 13)
	n, err = r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", string(out[:n]))

	_, err = r.Read(out)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGrowthAcrossManySmallWrites(t *testing.T) {
	var buf []byte
	w, err := New(&buf, true)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		_, err := w.Write([]byte{byte(i)})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.Len(t, buf, 1000)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, byte(i), buf[i])
	}
}

func TestPointerEncodingRoundTrip(t *testing.T) {
	var buf []byte
	url := EncodePointer(&buf)

	w, err := OpenPointer(url, true)
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "payload", string(buf))

	r, err := OpenPointer(url, false)
	require.NoError(t, err)
	defer r.Close()

	out := make([]byte, 7)
	n, err := r.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(out[:n]))
}

func TestSeek(t *testing.T) {
	data := []byte("0123456789")
	w, err := New(&data, false)
	require.NoError(t, err)
	defer w.Close()

	pos, err := w.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 7, pos)

	b := make([]byte, 3)
	n, err := w.Read(b)
	require.NoError(t, err)
	assert.Equal(t, "789", string(b[:n]))
}
