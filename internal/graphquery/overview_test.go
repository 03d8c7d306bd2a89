package graphquery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codetrace/internal/store"
)

func TestOverview_AggregatesByKindAndRelationType(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	seedNode(t, s, "a.go", "module", "", nil, nil)
	seedNode(t, s, "b.go", "module", "", nil, nil)
	seedNode(t, s, "c.go", "entry", "", nil, nil)
	require.NoError(t, s.UpsertRelationship(store.GraphRelationship{SourceID: "a.go", TargetID: "b.go", RelationType: "imports_direct"}))
	require.NoError(t, s.UpsertRelationship(store.GraphRelationship{SourceID: "a.go", TargetID: "c.go", RelationType: "contains"}))

	searcher := New(s, nil)
	ov, err := searcher.Overview()
	require.NoError(t, err)
	assert.Equal(t, 3, ov.TotalNodes)
	assert.Equal(t, 2, ov.NodesByKind["module"])
	assert.Equal(t, 1, ov.NodesByKind["entry"])
	assert.Equal(t, 2, ov.TotalRelationships)
	assert.Equal(t, 1, ov.RelationshipsByType["imports_direct"])
	assert.Equal(t, 1, ov.RelationshipsByType["contains"])
}

func TestOverview_EmptyGraphReturnsZeroedCounts(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	searcher := New(s, nil)
	ov, err := searcher.Overview()
	require.NoError(t, err)
	assert.Equal(t, 0, ov.TotalNodes)
	assert.Equal(t, 0, ov.TotalRelationships)
}

func TestRenderSearch_ProducesMarkdownWithMatches(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	seedNode(t, s, "auth.go", "module", "handles login", []string{"Login"}, nil)

	searcher := New(s, nil)
	md, err := searcher.RenderSearch(context.Background(), "login", 5)
	require.NoError(t, err)
	assert.Contains(t, md, "auth.go")
	assert.Contains(t, md, "handles login")
}

func TestRenderSearch_NoMatchesStillRendersMessage(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	searcher := New(s, nil)
	md, err := searcher.RenderSearch(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.Contains(t, md, "No graph nodes matched")
}

func TestRenderOverview_ProducesMarkdown(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	seedNode(t, s, "a.go", "module", "", nil, nil)

	searcher := New(s, nil)
	md, err := searcher.RenderOverview()
	require.NoError(t, err)
	assert.Contains(t, md, "total nodes: 1")
	assert.Contains(t, md, "module: 1")
}
