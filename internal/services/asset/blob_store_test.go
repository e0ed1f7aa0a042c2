package asset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskBlobStoreRoundTrip(t *testing.T) {
	s := NewDiskBlobStore(t.TempDir())

	size, err := s.Save("proj-1/asset.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), size)

	data, err := s.Read("proj-1/asset.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.NoError(t, s.Delete("proj-1/asset.png"))

	_, err = s.Read("proj-1/asset.png")
	assert.Error(t, err)
}

func TestDiskBlobStoreDeleteMissingIsNoop(t *testing.T) {
	s := NewDiskBlobStore(t.TempDir())
	assert.NoError(t, s.Delete("proj-1/never-written.png"))
}

func TestDiskBlobStoreRejectsEscapingPaths(t *testing.T) {
	base := t.TempDir()
	s := NewDiskBlobStore(filepath.Join(base, "assets"))

	for _, relPath := range []string{
		"../outside.png",
		"proj-1/../../outside.png",
		"/etc/passwd",
	} {
		_, err := s.Save(relPath, []byte("x"))
		assert.Error(t, err, relPath)

		_, err = s.Read(relPath)
		assert.Error(t, err, relPath)
	}
}
