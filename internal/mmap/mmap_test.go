package mmap

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmap_OpenReadClose(t *testing.T) {
	content := []byte("spilled page")
	f, err := os.CreateTemp(t.TempDir(), "mmap_test")
	require.NoError(t, err)

	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	m, err := Open(f.Name())
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())
	assert.False(t, m.Anonymous())

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 8)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "page", string(buf))

	buf2 := make([]byte, 10)
	n, err = m.ReadAt(buf2, 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	buf3 := make([]byte, 10)
	n, err = m.ReadAt(buf3, 8)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "page", string(buf3[:n]))

	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)

	require.NoError(t, m.Advise(AccessSequential))
}

func TestMmap_EmptyFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "mmap_test_empty")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	m, err := Open(f.Name())
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.NoError(t, m.Advise(AccessRandom))
}

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(8192)
	require.NoError(t, err)
	assert.True(t, m.Anonymous())
	assert.Equal(t, 8192, m.Size())

	data := m.Bytes()
	require.Len(t, data, 8192)
	assert.Equal(t, byte(0), data[4096])

	data[0] = 42
	data[8191] = 7
	assert.Equal(t, byte(42), m.Bytes()[0])
	assert.Equal(t, byte(7), m.Bytes()[8191])

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessNormal), ErrClosed)
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}
