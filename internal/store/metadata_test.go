package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMetadata_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	_, ok, err := s.FileMetadata("a.go")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetFileMetadata("a.go", "2026-07-30T00:00:00Z", "2026-07-30T00:01:00Z"))
	mtime, ok, err := s.FileMetadata("a.go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-07-30T00:00:00Z", mtime)
}

func TestFileMetadata_UpsertOverwrites(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	require.NoError(t, s.SetFileMetadata("a.go", "t0", "t0"))
	require.NoError(t, s.SetFileMetadata("a.go", "t1", "t1"))

	mtime, ok, err := s.FileMetadata("a.go")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t1", mtime)
}

func TestDeleteFileMetadata(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	require.NoError(t, s.SetFileMetadata("a.go", "t0", "t0"))
	require.NoError(t, s.DeleteFileMetadata("a.go"))

	_, ok, err := s.FileMetadata("a.go")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllFileMetadataPaths_ListsEveryTrackedFile(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	require.NoError(t, s.SetFileMetadata("a.go", "t0", "t0"))
	require.NoError(t, s.SetFileMetadata("b.go", "t0", "t0"))

	paths, err := s.AllFileMetadataPaths()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, paths)
}

func TestGitMetadata_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	_, ok, err := s.GitMetadata("commit")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetGitMetadata("commit", "abc123"))
	value, ok, err := s.GitMetadata("commit")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc123", value)

	require.NoError(t, s.SetGitMetadata("commit", "def456"))
	value, ok, err = s.GitMetadata("commit")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "def456", value)
}
