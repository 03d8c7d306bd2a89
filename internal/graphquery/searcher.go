// Package graphquery answers questions against the in-memory knowledge
// graph §4.J built: node search (vector + substring boost), key lookup,
// relationship listing, bounded path enumeration, and summary counts.
package graphquery

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/store"
)

// Searcher loads the graph lazily from internal/store on first use and
// keeps it in memory until Reload is called, matching spec.md §5's
// "in-memory graph: read-write lock; reads concurrent, writes exclusive
// and short" shared-state rule.
//
// Node storage and directed-edge topology live in a dominikbraun/graph
// instance, the same library the teacher used for this concern (see
// DESIGN.md component K). That library has no notion of a multi-edge
// between the same pair of vertices, but codetrace's relationships are
// typed and two distinct types (e.g. "imports_direct" and "contains")
// can hold between the same source and target — so the full relationship
// records, with type/description/confidence, are kept alongside the
// graph in out/in maps rather than folded into single simple edges.
type Searcher struct {
	store    *store.Store
	provider embed.Provider

	mu    sync.RWMutex
	g     graph.Graph[string, store.GraphNode]
	nodes map[string]store.GraphNode
	out   map[string][]store.GraphRelationship // outgoing edges by source id
	in    map[string][]store.GraphRelationship // incoming edges by target id

	adjOut map[string]map[string]graph.Edge[string] // topology view, from g.AdjacencyMap()
	loaded bool
}

func nodeHash(n store.GraphNode) string { return n.ID }

// New builds a Searcher. provider embeds search queries; it may be nil, in
// which case Search falls back to substring matching only.
func New(s *store.Store, provider embed.Provider) *Searcher {
	return &Searcher{store: s, provider: provider}
}

// Reload forces the in-memory graph to be rebuilt from internal/store on
// the next call. Call it after a batch of index_file/remove_file calls
// that touched the graph.
func (s *Searcher) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
}

func (s *Searcher) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	nodes, err := s.store.AllNodes()
	if err != nil {
		return fmt.Errorf("load graph nodes: %w", err)
	}

	g := graph.New(nodeHash, graph.Directed())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]store.GraphNode, len(nodes))
	s.out = make(map[string][]store.GraphRelationship)
	s.in = make(map[string][]store.GraphRelationship)

	for _, n := range nodes {
		s.nodes[n.ID] = n
		if err := g.AddVertex(n); err != nil && err != graph.ErrVertexAlreadyExists {
			return fmt.Errorf("add graph vertex %s: %w", n.ID, err)
		}
	}

	for _, n := range nodes {
		rels, err := s.store.RelationshipsFor(n.ID)
		if err != nil {
			return fmt.Errorf("load relationships for %s: %w", n.ID, err)
		}
		for _, r := range rels {
			if r.SourceID == n.ID {
				s.out[n.ID] = append(s.out[n.ID], r)
			}
			if r.TargetID == n.ID {
				s.in[n.ID] = append(s.in[n.ID], r)
			}
			if r.SourceID != n.ID {
				continue
			}
			if _, ok := s.nodes[r.TargetID]; !ok {
				continue // dangling target, nothing to draw an edge to
			}
			if err := g.AddEdge(r.SourceID, r.TargetID); err != nil && err != graph.ErrEdgeAlreadyExists {
				return fmt.Errorf("add graph edge %s->%s: %w", r.SourceID, r.TargetID, err)
			}
		}
	}

	adj, err := g.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("build adjacency map: %w", err)
	}

	s.g = g
	s.adjOut = adj
	s.loaded = true
	return nil
}

// NodeMatch is one ranked result from Search.
type NodeMatch struct {
	Node       store.GraphNode
	Similarity float64
}

// Search implements spec.md §4.K's node search: embed the query and rank
// by cosine similarity, then boost any node whose name, kind, description,
// or symbol list contains the query as a case-insensitive substring to at
// least 0.9, so exact matches always surface at the top.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int) ([]NodeMatch, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var queryVec []float32
	if s.provider != nil && query != "" {
		vecs, err := s.provider.Embed(ctx, []string{query}, embed.EmbedModeQuery)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		queryVec = vecs[0]
	}

	matches := make([]NodeMatch, 0, len(s.nodes))
	for _, n := range s.nodes {
		var sim float64
		if len(queryVec) > 0 && len(n.Embedding) > 0 {
			sim = cosineSimilarity(n.Embedding, queryVec)
		}
		if substringMatch(n, query) && sim < 0.9 {
			sim = 0.9
		}
		matches = append(matches, NodeMatch{Node: n, Similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

func substringMatch(n store.GraphNode, query string) bool {
	if query == "" {
		return false
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(n.DisplayName), q) ||
		strings.Contains(strings.ToLower(n.Kind), q) ||
		strings.Contains(strings.ToLower(n.Description), q) {
		return true
	}
	for _, sym := range n.Symbols {
		if strings.Contains(strings.ToLower(sym), q) {
			return true
		}
	}
	return false
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// GetNode implements spec.md §4.K's key lookup.
func (s *Searcher) GetNode(id string) (store.GraphNode, bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return store.GraphNode{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok, nil
}

// Relationships groups the edges touching one node by direction.
type Relationships struct {
	Outgoing []store.GraphRelationship
	Incoming []store.GraphRelationship
}

// GetRelationships implements spec.md §4.K: every edge where id is the
// source or the target, grouped into outgoing and incoming.
func (s *Searcher) GetRelationships(id string) (Relationships, error) {
	if err := s.ensureLoaded(); err != nil {
		return Relationships{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Relationships{Outgoing: s.out[id], Incoming: s.in[id]}, nil
}
