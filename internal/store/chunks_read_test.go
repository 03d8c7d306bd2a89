package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCodeByIDs_ReturnsMatchingRows(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertCode([]CodeRow{
		{ID: "c1", Path: "a.go", Content: "func A() {}", Start: 1, End: 1, Hash: "hash-a", Language: "go", Symbols: []string{"A"}},
		{ID: "c2", Path: "a.go", Content: "func B() {}", Start: 3, End: 3, Hash: "hash-b", Language: "go", Symbols: []string{"B"}},
	}, [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}))

	rows, err := s.GetCodeByIDs([]string{"c1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "func A() {}", rows[0].Content)
	assert.Equal(t, []string{"A"}, rows[0].Symbols)
}

func TestGetCodeByIDs_MissingIDsOmittedNotErrored(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertCode([]CodeRow{
		{ID: "c1", Path: "a.go", Content: "func A() {}", Start: 1, End: 1, Hash: "hash-a", Language: "go"},
	}, [][]float32{{1, 0, 0, 0}}))

	rows, err := s.GetCodeByIDs([]string{"c1", "does-not-exist"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetDocumentByIDs_ReturnsTitleAndContext(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertDocument([]DocumentRow{
		{ID: "d1", Path: "README.md", Content: "body", Start: 1, End: 3, Hash: "h1", Title: "Intro", Context: []string{"Intro"}, Level: 2},
	}, [][]float32{{1, 0, 0, 0}}))

	rows, err := s.GetDocumentByIDs([]string{"d1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Intro", rows[0].Title)
	assert.Equal(t, []string{"Intro"}, rows[0].Context)
	assert.Equal(t, 2, rows[0].Level)
}

func TestGetTextByIDs_ReturnsMatchingRows(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	require.NoError(t, s.InsertText([]TextRow{
		{ID: "t1", Path: "notes.txt", Content: "hello world", Start: 1, End: 1, Hash: "h1"},
	}, [][]float32{{1, 1, 1, 1}}))

	rows, err := s.GetTextByIDs([]string{"t1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "hello world", rows[0].Content)
}
