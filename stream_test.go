package hstream

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, "input")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	x := uint32(0x2545F491)
	for i := range b {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b[i] = byte(x)
	}
	return b
}

// TestCopyThrough mirrors test/hfile.c's first scenarios: copy a file
// through hgetc/hputc, then through fixed-size hread/hwrite chunks of
// several sizes, and check the result is byte-for-byte identical.
func TestCopyThrough(t *testing.T) {
	dir := t.TempDir()
	original := randomBytes(30000)
	inPath := writeTempFile(t, dir, original)

	t.Run("byte-at-a-time", func(t *testing.T) {
		outPath := filepath.Join(dir, "out-bytewise")
		in, err := Open(inPath, "r")
		require.NoError(t, err)
		out, err := Open(outPath, "w")
		require.NoError(t, err)

		for {
			b, err := in.ReadByte()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			require.NoError(t, out.WriteByte(b))
		}
		require.NoError(t, in.Close())
		require.NoError(t, out.Close())

		got, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, original, got)
	})

	for _, size := range []int{1, 13, 403, 999, 30000} {
		t.Run("chunked", func(t *testing.T) {
			outPath := filepath.Join(dir, "out-chunked")
			in, err := Open(inPath, "r")
			require.NoError(t, err)
			out, err := Open(outPath, "w")
			require.NoError(t, err)

			buf := make([]byte, size)
			for {
				n, err := in.Read(buf)
				if n > 0 {
					_, werr := out.Write(buf[:n])
					require.NoError(t, werr)
				}
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
			}
			require.NoError(t, in.Close())
			require.NoError(t, out.Close())

			got, err := os.ReadFile(outPath)
			require.NoError(t, err)
			assert.Equal(t, original, got)
		})
	}
}

// TestPeekPreservesOffset mirrors the spec's peek-preserves-offset scenario.
func TestPeekPreservesOffset(t *testing.T) {
	dir := t.TempDir()
	original := randomBytes(2000)
	inPath := writeTempFile(t, dir, original)

	f, err := Open(inPath, "r")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 200)
	n, err := f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 200, n)
	assert.Equal(t, original[:200], buf)
	assert.EqualValues(t, 200, f.Tell())

	peeked, err := f.Peek(700)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(peeked), 700)
	assert.EqualValues(t, 200, f.Tell())

	rest := make([]byte, 800)
	n, err = f.Read(rest)
	require.NoError(t, err)
	require.Equal(t, 800, n)
	assert.Equal(t, original[200:1000], rest)
	assert.True(t, bytes.HasPrefix(rest, peeked[:min(len(peeked), 800)]))
}

// TestSeekAndRewrite mirrors the spec's seek-and-rewrite scenario.
func TestSeekAndRewrite(t *testing.T) {
	dir := t.TempDir()
	original := randomBytes(2000)
	inPath := writeTempFile(t, dir, original)

	f, err := Open(inPath, "r")
	require.NoError(t, err)
	defer f.Close()

	head := make([]byte, 200)
	_, err = io.ReadFull(f, head)
	require.NoError(t, err)
	assert.Equal(t, original[:200], head)

	_, err = f.Seek(800, io.SeekCurrent)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, f.Tell())

	tail := make([]byte, len(original)-1000)
	_, err = io.ReadFull(f, tail)
	require.NoError(t, err)
	assert.Equal(t, original[1000:], tail)

	pos, err := f.Seek(200, io.SeekStart)
	require.NoError(t, err)
	assert.EqualValues(t, 200, pos)

	replay := make([]byte, 800)
	_, err = io.ReadFull(f, replay)
	require.NoError(t, err)
	assert.Equal(t, original[200:1000], replay)
}

// TestAllByteValues mirrors the spec's byte-fidelity scenario: write every
// value 0..255 and read it back identically, with EOF at position 256.
func TestAllByteValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bytes")

	out, err := Open(path, "w")
	require.NoError(t, err)
	for i := 0; i < 256; i++ {
		require.NoError(t, out.WriteByte(byte(i)))
	}
	require.NoError(t, out.Close())

	in, err := Open(path, "r")
	require.NoError(t, err)
	defer in.Close()

	for i := 0; i < 256; i++ {
		b, err := in.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte(i), b)
	}
	_, err = in.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDataURL(t *testing.T) {
	f, err := Open("data:hello, world!\n", "r")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 300)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!\n", string(buf[:n]))
}

func TestMemoryBufferRoundTrip(t *testing.T) {
	var data []byte

	out, err := OpenMemoryBuffer(&data, "w")
	require.NoError(t, err)

	const size = 2 << 20
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i % 128)
	}
	_, err = out.Write(payload)
	require.NoError(t, err)
	require.NoError(t, out.Close())
	require.Len(t, data, size)

	in, err := OpenMemoryBuffer(&data, "r")
	require.NoError(t, err)
	defer in.Close()

	for i := size - 1; i >= 0; i -= (size / 256) + 1 {
		pos, err := in.Seek(int64(i), io.SeekStart)
		require.NoError(t, err)
		require.EqualValues(t, i, pos)

		b, err := in.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte(i%128), b)
	}
}

func TestErrUnsupportedOnWrongMode(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, []byte("x"))

	f, err := Open(path, "r")
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("y"))
	require.Error(t, err)
	assert.True(t, IsKind(err, Unsupported))

	// The stream is now sticky-errored: further reads must fail with the
	// same error.
	_, err2 := f.Read(make([]byte, 1))
	assert.Equal(t, err, err2)
}

func TestStickyErrorSurvivesClose(t *testing.T) {
	f, err := Open("data:abc", "r")
	require.NoError(t, err)

	_, err = f.Write([]byte("no"))
	require.Error(t, err)

	require.NoError(t, f.Close())
	assert.Error(t, f.Err())
}
