// Package memory wraps the store's free-form note table with the business
// rules spec.md §4.L asks for: embedding notes on write, and layering a
// similarity search on top of the store's type/related-id filters.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/store"
)

// Store is the memory subsystem's entry point: a thin layer over
// store.Store that adds embedding generation and similarity ranking. The
// memory table has no vec0 companion table (unlike the chunk kinds), so
// similarity search is computed in Go over the filtered result set rather
// than through a SQL ANN index.
type Store struct {
	store    *store.Store
	provider embed.Provider
}

// New builds a memory Store. provider embeds note content on Remember and
// query text on Search; pass nil to disable embedding (notes are still
// stored and filterable by type/related-id, just not by similarity).
func New(s *store.Store, provider embed.Provider) *Store {
	return &Store{store: s, provider: provider}
}

// Remember stores a new typed note, embedding its content if a provider is
// configured. relatedTo may be nil.
func (m *Store) Remember(ctx context.Context, noteType, content string, relatedTo []string) (store.MemoryNote, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	n := store.MemoryNote{
		NoteType:  noteType,
		Content:   content,
		RelatedTo: relatedTo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if m.provider != nil {
		vecs, err := m.provider.Embed(ctx, []string{content}, embed.EmbedModePassage)
		if err != nil {
			return store.MemoryNote{}, fmt.Errorf("embed note: %w", err)
		}
		if len(vecs) > 0 {
			n.Embedding = vecs[0]
		}
	}

	id, err := m.store.PutNote(n)
	if err != nil {
		return store.MemoryNote{}, err
	}
	n.ID = id
	return n, nil
}

// Update replaces an existing note's content and/or relationships,
// re-embedding the content and bumping UpdatedAt. The note must already
// exist; its CreatedAt is preserved.
func (m *Store) Update(ctx context.Context, id, noteType, content string, relatedTo []string) (store.MemoryNote, error) {
	existing, ok, err := m.store.GetNote(id)
	if err != nil {
		return store.MemoryNote{}, err
	}
	if !ok {
		return store.MemoryNote{}, fmt.Errorf("memory note %s not found", id)
	}

	n := store.MemoryNote{
		ID:        id,
		NoteType:  noteType,
		Content:   content,
		RelatedTo: relatedTo,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	if m.provider != nil {
		vecs, err := m.provider.Embed(ctx, []string{content}, embed.EmbedModePassage)
		if err != nil {
			return store.MemoryNote{}, fmt.Errorf("embed note: %w", err)
		}
		if len(vecs) > 0 {
			n.Embedding = vecs[0]
		}
	}

	if _, err := m.store.PutNote(n); err != nil {
		return store.MemoryNote{}, err
	}
	return n, nil
}

// Forget deletes a note by id.
func (m *Store) Forget(id string) error {
	return m.store.DeleteNote(id)
}

// Get fetches one note by id.
func (m *Store) Get(id string) (store.MemoryNote, bool, error) {
	return m.store.GetNote(id)
}

// Search returns notes matching filter, most-recently-updated first. When
// queryText is non-empty and a provider is configured, results are instead
// ranked by cosine similarity to the query embedding and truncated to
// maxResults (<=0 means no truncation). Notes without an embedding sort
// last under similarity ranking.
func (m *Store) Search(ctx context.Context, filter store.NoteFilter, queryText string, maxResults int) ([]store.MemoryNote, error) {
	notes, err := m.store.SearchNotes(filter)
	if err != nil {
		return nil, err
	}

	if queryText == "" || m.provider == nil {
		return truncate(notes, maxResults), nil
	}

	vecs, err := m.provider.Embed(ctx, []string{queryText}, embed.EmbedModeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}
	if len(vecs) == 0 {
		return truncate(notes, maxResults), nil
	}
	query := vecs[0]

	rankBySimilarity(notes, query)
	return truncate(notes, maxResults), nil
}

func truncate(notes []store.MemoryNote, maxResults int) []store.MemoryNote {
	if maxResults > 0 && len(notes) > maxResults {
		return notes[:maxResults]
	}
	return notes
}

// rankBySimilarity sorts notes in place by descending cosine similarity to
// query. Notes with no embedding are pushed to the end.
func rankBySimilarity(notes []store.MemoryNote, query []float32) {
	scores := make(map[string]float64, len(notes))
	for _, n := range notes {
		if len(n.Embedding) == 0 {
			scores[n.ID] = math.Inf(-1)
			continue
		}
		scores[n.ID] = cosineSimilarity(n.Embedding, query)
	}

	sort.Slice(notes, func(i, j int) bool {
		return scores[notes[i].ID] > scores[notes[j].ID]
	})
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
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
