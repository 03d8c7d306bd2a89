package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutNote_AutoGeneratesIDAndGetNote(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	id, err := s.PutNote(MemoryNote{
		NoteType:  "preference",
		Content:   "prefers terse responses",
		RelatedTo: []string{"user-123"},
		CreatedAt: "2026-07-30T00:00:00Z",
		UpdatedAt: "2026-07-30T00:00:00Z",
		Embedding: []float32{0.5, 0.5},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	note, ok, err := s.GetNote(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "preference", note.NoteType)
	assert.Equal(t, []string{"user-123"}, note.RelatedTo)
	require.Len(t, note.Embedding, 2)
}

func TestGetNote_MissingReturnsNotOK(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	_, ok, err := s.GetNote("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutNote_UpsertsByID(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	id, err := s.PutNote(MemoryNote{ID: "n1", NoteType: "fact", Content: "v1", CreatedAt: "t0", UpdatedAt: "t0"})
	require.NoError(t, err)
	_, err = s.PutNote(MemoryNote{ID: id, NoteType: "fact", Content: "v2", CreatedAt: "t0", UpdatedAt: "t1"})
	require.NoError(t, err)

	note, ok, err := s.GetNote(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", note.Content)
}

func TestDeleteNote(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	id, err := s.PutNote(MemoryNote{NoteType: "fact", Content: "x", CreatedAt: "t0", UpdatedAt: "t0"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteNote(id))

	_, ok, err := s.GetNote(id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchNotes_FiltersByTypeAndRelated(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	_, err := s.PutNote(MemoryNote{NoteType: "preference", Content: "p1", RelatedTo: []string{"user-1"}, CreatedAt: "t0", UpdatedAt: "t1"})
	require.NoError(t, err)
	_, err = s.PutNote(MemoryNote{NoteType: "fact", Content: "f1", RelatedTo: []string{"user-2"}, CreatedAt: "t0", UpdatedAt: "t2"})
	require.NoError(t, err)

	byType, err := s.SearchNotes(NoteFilter{NoteType: "preference"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "p1", byType[0].Content)

	byRelated, err := s.SearchNotes(NoteFilter{RelatedTo: "user-2"})
	require.NoError(t, err)
	require.Len(t, byRelated, 1)
	assert.Equal(t, "f1", byRelated[0].Content)

	all, err := s.SearchNotes(NoteFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "f1", all[0].Content, "most recently updated first")
}
