package graphrag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/lang"
	"github.com/mvp-joe/codetrace/internal/store"
)

// fakeSummarizer is a test double for Summarizer: Describe always errors (so
// tests exercising it stay on the cheap-description path), and
// DiscoverRelationships returns whatever candidates a test pre-loads for the
// given node, or an error for nodes listed in failFor.
type fakeSummarizer struct {
	candidates map[string][]RelationCandidate
	failFor    map[string]bool
	calls      []string
}

func (f *fakeSummarizer) Describe(ctx context.Context, n nodeDraft) (string, error) {
	return "", fmt.Errorf("fakeSummarizer.Describe not used by these tests")
}

func (f *fakeSummarizer) DiscoverRelationships(ctx context.Context, node store.GraphNode, candidateIDs []string) ([]RelationCandidate, error) {
	f.calls = append(f.calls, node.ID)
	if f.failFor[node.ID] {
		return nil, fmt.Errorf("discovery failed for %s", node.ID)
	}
	return f.candidates[node.ID], nil
}

func significantNode(id string) store.GraphNode {
	return store.GraphNode{ID: id, DisplayName: id, Language: "go", SizeLines: 250}
}

func TestDiscoverAIRelationships_NoSummarizerIsNoOp(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	require.NoError(t, s.UpsertNode(significantNode("a.go")))

	b := New(s, lang.NewRegistry(), embed.NewMockProvider(), t.TempDir())
	require.NoError(t, b.DiscoverAIRelationships(context.Background()))

	rels, err := s.RelationshipsFor("a.go")
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestDiscoverAIRelationships_PersistsOnlyHighConfidenceExistingTargets(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	require.NoError(t, s.UpsertNode(significantNode("a.go")))
	require.NoError(t, s.UpsertNode(significantNode("b.go")))

	summarizer := &fakeSummarizer{candidates: map[string][]RelationCandidate{
		"a.go": {
			{TargetID: "b.go", RelationType: "implements_pattern", Description: "a implements b's interface", Confidence: 0.9},
			{TargetID: "b.go", RelationType: "dependency_injection", Description: "low confidence", Confidence: 0.5},
			{TargetID: "missing.go", RelationType: "implements_pattern", Description: "target doesn't exist", Confidence: 0.95},
			{TargetID: "a.go", RelationType: "implements_pattern", Description: "self reference", Confidence: 0.95},
			{TargetID: "b.go", RelationType: "", Description: "no relation type", Confidence: 0.95},
		},
	}}

	b := New(s, lang.NewRegistry(), embed.NewMockProvider(), t.TempDir(), WithSummarizer(summarizer))
	require.NoError(t, b.DiscoverAIRelationships(context.Background()))

	rels, err := s.RelationshipsFor("a.go")
	require.NoError(t, err)
	require.Len(t, rels, 1, "only the confidence>0.7, existing-target, non-self, typed candidate should survive")
	assert.Equal(t, "b.go", rels[0].TargetID)
	assert.Equal(t, "implements_pattern", rels[0].RelationType)
	assert.Equal(t, 0.9, rels[0].Confidence)
}

func TestDiscoverAIRelationships_PerNodeFailureIsLoggedAndSkipped(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	require.NoError(t, s.UpsertNode(significantNode("a.go")))
	require.NoError(t, s.UpsertNode(significantNode("b.go")))

	summarizer := &fakeSummarizer{
		failFor: map[string]bool{"a.go": true},
		candidates: map[string][]RelationCandidate{
			"b.go": {{TargetID: "a.go", RelationType: "orchestrates", Description: "b orchestrates a", Confidence: 0.8}},
		},
	}

	b := New(s, lang.NewRegistry(), embed.NewMockProvider(), t.TempDir(), WithSummarizer(summarizer))
	require.NoError(t, b.DiscoverAIRelationships(context.Background()), "a per-node discovery failure must not fail the whole batch")

	rels, err := s.RelationshipsFor("b.go")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "a.go", rels[0].TargetID)

	allRels, err := s.RelationshipsFor("a.go")
	require.NoError(t, err)
	for _, r := range allRels {
		assert.NotEqual(t, "a.go", r.SourceID, "a.go's own discovery call failed, so it must not have proposed any outgoing relationship")
	}
}

func TestDiscoverAIRelationships_SkipsInsignificantNodes(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	require.NoError(t, s.UpsertNode(store.GraphNode{ID: "tiny.md", DisplayName: "tiny.md", Language: "markdown", SizeLines: 5}))

	summarizer := &fakeSummarizer{}
	b := New(s, lang.NewRegistry(), embed.NewMockProvider(), t.TempDir(), WithSummarizer(summarizer))
	require.NoError(t, b.DiscoverAIRelationships(context.Background()))

	assert.Empty(t, summarizer.calls, "a small markdown file with no config/entry/module_root kind and few symbols isn't architecturally significant")
}

func TestDiscoverAIRelationships_CapsBatchSize(t *testing.T) {
	t.Parallel()

	s := store.NewTestStore(t, 0)
	for i := 0; i < maxAIRelationNodes+5; i++ {
		require.NoError(t, s.UpsertNode(significantNode(fmt.Sprintf("node%d.go", i))))
	}

	summarizer := &fakeSummarizer{}
	b := New(s, lang.NewRegistry(), embed.NewMockProvider(), t.TempDir(), WithSummarizer(summarizer))
	require.NoError(t, b.DiscoverAIRelationships(context.Background()))

	assert.LessOrEqual(t, len(summarizer.calls), maxAIRelationNodes)
}
