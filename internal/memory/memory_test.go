package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := store.NewTestStore(t, 0)
	return New(s, embed.NewMockProvider())
}

func TestRemember_StoresNoteWithEmbedding(t *testing.T) {
	t.Parallel()

	m := newTestStore(t)
	n, err := m.Remember(context.Background(), "decision", "use sqlite for storage", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "decision", n.NoteType)
	assert.NotEmpty(t, n.CreatedAt)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)

	got, ok, err := m.Get(n.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "use sqlite for storage", got.Content)
	assert.NotEmpty(t, got.Embedding)
}

func TestSearch_FiltersByNoteType(t *testing.T) {
	t.Parallel()

	m := newTestStore(t)
	ctx := context.Background()
	_, err := m.Remember(ctx, "decision", "picked sqlite", nil)
	require.NoError(t, err)
	_, err = m.Remember(ctx, "todo", "write more tests", nil)
	require.NoError(t, err)

	results, err := m.Search(ctx, store.NoteFilter{NoteType: "todo"}, "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "write more tests", results[0].Content)
}

func TestSearch_FiltersByRelatedTo(t *testing.T) {
	t.Parallel()

	m := newTestStore(t)
	ctx := context.Background()
	parent, err := m.Remember(ctx, "decision", "root decision", nil)
	require.NoError(t, err)
	_, err = m.Remember(ctx, "note", "follow-up note", []string{parent.ID})
	require.NoError(t, err)
	_, err = m.Remember(ctx, "note", "unrelated note", nil)
	require.NoError(t, err)

	results, err := m.Search(ctx, store.NoteFilter{RelatedTo: parent.ID}, "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "follow-up note", results[0].Content)
}

func TestSearch_RanksBySimilarityWhenQueryTextGiven(t *testing.T) {
	t.Parallel()

	m := newTestStore(t)
	ctx := context.Background()
	match, err := m.Remember(ctx, "note", "authentication flow uses JWT tokens", nil)
	require.NoError(t, err)
	_, err = m.Remember(ctx, "note", "completely unrelated gardening tips", nil)
	require.NoError(t, err)

	results, err := m.Search(ctx, store.NoteFilter{}, "authentication flow uses JWT tokens", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].ID, "the identical note should rank first by cosine similarity")
}

func TestUpdate_PreservesCreatedAtAndRebuildsEmbedding(t *testing.T) {
	t.Parallel()

	m := newTestStore(t)
	ctx := context.Background()
	n, err := m.Remember(ctx, "note", "original content", nil)
	require.NoError(t, err)

	updated, err := m.Update(ctx, n.ID, "note", "revised content", []string{"other-id"})
	require.NoError(t, err)
	assert.Equal(t, n.CreatedAt, updated.CreatedAt)
	assert.Equal(t, []string{"other-id"}, updated.RelatedTo)

	got, ok, err := m.Get(n.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "revised content", got.Content)
}

func TestForget_RemovesNote(t *testing.T) {
	t.Parallel()

	m := newTestStore(t)
	n, err := m.Remember(context.Background(), "note", "temporary", nil)
	require.NoError(t, err)

	require.NoError(t, m.Forget(n.ID))

	_, ok, err := m.Get(n.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
