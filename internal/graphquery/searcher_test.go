package graphquery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/store"
)

func seedNode(t *testing.T, s *store.Store, id, kind, description string, symbols []string, emb []float32) {
	t.Helper()
	require.NoError(t, s.UpsertNode(store.GraphNode{
		ID: id, DisplayName: id, Kind: kind, Description: description,
		Symbols: symbols, Embedding: emb,
	}))
}

func TestSearch_SubstringMatchBoostsSimilarity(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	seedNode(t, s, "auth.go", "module", "handles login", []string{"Login"}, nil)
	seedNode(t, s, "unrelated.go", "module", "does nothing notable", []string{"Noop"}, nil)

	searcher := New(s, nil)
	matches, err := searcher.Search(context.Background(), "login", 10)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "auth.go", matches[0].Node.ID)
	assert.GreaterOrEqual(t, matches[0].Similarity, 0.9)
}

func TestSearch_EmbeddingRanksByCosineSimilarity(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	provider := embed.NewMockProvider()
	vecs, err := provider.Embed(context.Background(), []string{"parse tokens"}, embed.EmbedModePassage)
	require.NoError(t, err)

	seedNode(t, s, "parser.go", "module", "", []string{"Parse"}, vecs[0])
	seedNode(t, s, "other.go", "module", "", []string{"Other"}, make([]float32, len(vecs[0])))

	searcher := New(s, provider)
	matches, err := searcher.Search(context.Background(), "parse tokens", 10)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "parser.go", matches[0].Node.ID)
}

func TestSearch_RespectsMaxResults(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	for _, id := range []string{"a.go", "b.go", "c.go"} {
		seedNode(t, s, id, "module", "", nil, nil)
	}

	searcher := New(s, nil)
	matches, err := searcher.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestGetNode_ReturnsFalseWhenMissing(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	searcher := New(s, nil)
	_, ok, err := searcher.GetNode("missing.go")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetRelationships_GroupsByDirection(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	seedNode(t, s, "a.go", "module", "", nil, nil)
	seedNode(t, s, "b.go", "module", "", nil, nil)
	seedNode(t, s, "c.go", "module", "", nil, nil)
	require.NoError(t, s.UpsertRelationship(store.GraphRelationship{SourceID: "a.go", TargetID: "b.go", RelationType: "imports_direct"}))
	require.NoError(t, s.UpsertRelationship(store.GraphRelationship{SourceID: "c.go", TargetID: "a.go", RelationType: "contains"}))

	searcher := New(s, nil)
	rels, err := searcher.GetRelationships("a.go")
	require.NoError(t, err)
	require.Len(t, rels.Outgoing, 1)
	assert.Equal(t, "b.go", rels.Outgoing[0].TargetID)
	require.Len(t, rels.Incoming, 1)
	assert.Equal(t, "c.go", rels.Incoming[0].SourceID)
}

func TestReload_PicksUpNewlyPersistedNodes(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	searcher := New(s, nil)
	_, ok, err := searcher.GetNode("late.go")
	require.NoError(t, err)
	assert.False(t, ok)

	seedNode(t, s, "late.go", "module", "", nil, nil)
	searcher.Reload()

	_, ok, err = searcher.GetNode("late.go")
	require.NoError(t, err)
	assert.True(t, ok)
}
