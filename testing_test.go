package staticd

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockFileSystem_StatAndOpen(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/www/index.html", []byte("<html>hi</html>"), 0)

	info, err := mfs.Stat("/www/index.html")
	require.NoError(t, err)
	assert.Equal(t, int64(15), info.Size())
	assert.Equal(t, fs.FileMode(0o644), info.Mode())
	assert.False(t, info.IsDir())

	mapped, err := mfs.Open("/www/index.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>hi</html>"), mapped.Data())

	require.NoError(t, mapped.Close())
	assert.Equal(t, 1, mfs.StatCalls())
	assert.Equal(t, 1, mfs.OpenCalls())
	assert.Equal(t, 1, mfs.CloseCalls())
}

func TestMockFileSystem_MissingEntry(t *testing.T) {
	mfs := NewMockFileSystem()

	_, err := mfs.Stat("/nope")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = mfs.Open("/nope")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMockFileSystem_DirectoryOpenFails(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddDir("/www")

	info, err := mfs.Stat("/www")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = mfs.Open("/www")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMockFileSystem_ErrorInjection(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/f", []byte("x"), 0)

	boom := errors.New("boom")
	mfs.StatErr = boom
	_, err := mfs.Stat("/f")
	assert.ErrorIs(t, err, boom)

	mfs.OpenErr = boom
	_, err = mfs.Open("/f")
	assert.ErrorIs(t, err, boom)
}

func TestMockFileSystem_CloseIdempotent(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/f", []byte("data"), 0)

	mapped, err := mfs.Open("/f")
	require.NoError(t, err)
	require.NoError(t, mapped.Close())
	require.NoError(t, mapped.Close())
	assert.Equal(t, 1, mfs.CloseCalls())
}

func TestMockFileSystem_Remove(t *testing.T) {
	mfs := NewMockFileSystem()
	mfs.AddFile("/f", []byte("x"), 0)
	mfs.Remove("/f")

	_, err := mfs.Stat("/f")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
