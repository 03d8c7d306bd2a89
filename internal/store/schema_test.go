package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesChunkAndMetadataTables(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)

	tables := []string{
		"code_blocks", "text_blocks", "document_blocks",
		"graphrag_nodes", "graphrag_relationships",
		"memory", "git_metadata", "file_metadata", "store_metadata",
		"code_blocks_fts", "text_blocks_fts", "document_blocks_fts",
	}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestOpen_DeferredVectorTables(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)

	var count int
	err := s.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'code_blocks_vec'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "vector tables should not exist until a dimension is known")
}

func TestOpen_WithDimensionCreatesVectorTables(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 8)

	for _, table := range []string{"code_blocks_vec", "text_blocks_vec", "document_blocks_vec"} {
		var count int
		err := s.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = ?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestOpen_FTSSyncsOnInsertAndDelete(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 8)

	err := s.InsertCode([]CodeRow{
		{Path: "a.go", Content: "func findUser() {}", Start: 1, End: 1, Hash: "h1", Language: "go", Symbols: []string{"findUser"}},
	}, [][]float32{{1, 2, 3, 4, 5, 6, 7, 8}})
	require.NoError(t, err)

	var count int
	err = s.DB().QueryRow("SELECT COUNT(*) FROM code_blocks_fts WHERE code_blocks_fts MATCH 'findUser'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hashes, err := s.HashesForPath(KindCode, "a.go")
	require.NoError(t, err)
	ids := make([]string, 0, len(hashes))
	for _, id := range hashes {
		ids = append(ids, id)
	}
	require.NoError(t, s.DeleteByIDs(KindCode, ids))

	err = s.DB().QueryRow("SELECT COUNT(*) FROM code_blocks_fts WHERE code_blocks_fts MATCH 'findUser'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
