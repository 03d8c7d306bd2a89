package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertCode_AndHashesForPath(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	err := s.InsertCode([]CodeRow{
		{Path: "a.go", Content: "func A() {}", Start: 1, End: 1, Hash: "hash-a", Language: "go", Symbols: []string{"A"}},
		{Path: "a.go", Content: "func B() {}", Start: 3, End: 3, Hash: "hash-b", Language: "go", Symbols: []string{"B"}},
	}, [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}})
	require.NoError(t, err)

	hashes, err := s.HashesForPath(KindCode, "a.go")
	require.NoError(t, err)
	assert.Len(t, hashes, 2)
	assert.Contains(t, hashes, "hash-a")
	assert.Contains(t, hashes, "hash-b")
}

func TestInsertCode_AutoGeneratesID(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertCode([]CodeRow{
		{Path: "a.go", Content: "func A() {}", Start: 1, End: 1, Hash: "hash-a", Language: "go"},
	}, [][]float32{{1, 0, 0, 0}}))

	var id string
	err := s.DB().QueryRow("SELECT id FROM code_blocks WHERE content_hash = ?", "hash-a").Scan(&id)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestDeleteByIDs_RemovesRowAndVector(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertText([]TextRow{
		{ID: "t1", Path: "notes.txt", Content: "hello world", Start: 1, End: 1, Hash: "h1"},
	}, [][]float32{{1, 1, 1, 1}}))

	require.NoError(t, s.DeleteByIDs(KindText, []string{"t1"}))

	hashes, err := s.HashesForPath(KindText, "notes.txt")
	require.NoError(t, err)
	assert.Empty(t, hashes)

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM text_blocks_vec WHERE id = 't1'").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDeleteByPath_PurgesLegacyChunkedTextPaths(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertText([]TextRow{
		{ID: "t1", Path: "big.txt", Content: "part one", Start: 1, End: 10, Hash: "h1"},
		{ID: "t2", Path: "big.txt#1", Content: "part two", Start: 11, End: 20, Hash: "h2"},
	}, [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}))

	require.NoError(t, s.DeleteByPath(KindText, "big.txt"))

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM text_blocks").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestClearAll_EmptiesEveryChunkTable(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertCode([]CodeRow{{ID: "c1", Path: "a.go", Content: "x", Start: 1, End: 1, Hash: "h1", Language: "go"}}, [][]float32{{1, 0, 0, 0}}))
	require.NoError(t, s.InsertText([]TextRow{{ID: "t1", Path: "a.txt", Content: "x", Start: 1, End: 1, Hash: "h2"}}, [][]float32{{1, 0, 0, 0}}))
	require.NoError(t, s.InsertDocument([]DocumentRow{{ID: "d1", Path: "a.md", Content: "x", Start: 1, End: 1, Hash: "h3", Title: "T"}}, [][]float32{{1, 0, 0, 0}}))

	require.NoError(t, s.ClearAll())

	for _, table := range []string{"code_blocks", "text_blocks", "document_blocks"} {
		var count int
		require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Equal(t, 0, count, "table %s should be empty", table)
	}
}

func TestFlush_PingsLiveConnection(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	assert.NoError(t, s.Flush())
}
