package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/rerank"
	"github.com/mvp-joe/codetrace/internal/store"
)

// Request is one search call's parameters (spec.md §4.H step 0).
type Request struct {
	Queries    []string
	Mode       Mode
	Detail     DetailLevel
	MaxResults int
}

// Result is one rendered hit.
type Result struct {
	ID         string
	Kind       string // store.KindCode / KindText / KindDocument
	Path       string
	Hash       string
	Language   string
	Title      string
	StartLine  int
	EndLine    int
	Symbols    []string
	Similarity float64
	Content    string // full, untruncated content — rendering applies Detail
}

// Searcher runs the query pipeline over a store.
type Searcher struct {
	store *store.Store
	cfg   Config
}

func New(s *store.Store, cfg Config) *Searcher {
	return &Searcher{store: s, cfg: cfg.withDefaults()}
}

// Validate checks Request against spec.md §4.H's input constraints.
func (r Request) Validate() error {
	if len(r.Queries) == 0 {
		return fmt.Errorf("at least one query is required")
	}
	if len(r.Queries) > MaxQueries {
		return fmt.Errorf("at most %d queries are allowed, got %d", MaxQueries, len(r.Queries))
	}
	for _, q := range r.Queries {
		if len(q) < MinQueryLen || len(q) > MaxQueryLen {
			return fmt.Errorf("query must be %d-%d characters, got %d", MinQueryLen, MaxQueryLen, len(q))
		}
	}
	switch r.Mode {
	case ModeCode, ModeDocs, ModeText, ModeAll, "":
	default:
		return fmt.Errorf("invalid mode %q", r.Mode)
	}
	switch r.Detail {
	case DetailSignatures, DetailPartial, DetailFull, "":
	default:
		return fmt.Errorf("invalid detail_level %q", r.Detail)
	}
	if r.MaxResults != 0 && (r.MaxResults < MinMaxResults || r.MaxResults > MaxMaxResults) {
		return fmt.Errorf("max_results must be %d-%d, got %d", MinMaxResults, MaxMaxResults, r.MaxResults)
	}
	return nil
}

func kindsForMode(mode Mode) []string {
	switch mode {
	case ModeCode:
		return []string{store.KindCode}
	case ModeDocs:
		return []string{store.KindDocument}
	case ModeText:
		return []string{store.KindText}
	default:
		return []string{store.KindCode, store.KindDocument, store.KindText}
	}
}

// Search runs the full pipeline (spec.md §4.H) and returns the fused,
// rendered result set.
func (s *Searcher) Search(ctx context.Context, req Request) ([]Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	kinds := kindsForMode(req.Mode)

	var perQuery [][]Result
	for _, q := range req.Queries {
		results, err := s.searchOneQuery(ctx, q, kinds, maxResults)
		if err != nil {
			return nil, err
		}
		perQuery = append(perQuery, results)
	}

	if len(perQuery) == 1 {
		return perQuery[0], nil
	}
	return fuse(perQuery, maxResults), nil
}

// searchOneQuery runs steps 1-6 of spec.md §4.H for a single query string.
func (s *Searcher) searchOneQuery(ctx context.Context, queryText string, kinds []string, maxResults int) ([]Result, error) {
	k := 2 * maxResults
	if k < candidateFloor {
		k = candidateFloor
	}

	var rows []candidateRow
	for _, kind := range kinds {
		provider := s.cfg.providerFor(kind)
		if provider == nil {
			continue
		}
		vec, err := embedQuery(ctx, provider, queryText)
		if err != nil {
			return nil, err
		}
		matches, err := s.store.SearchVectors(kind, vec, k)
		if err != nil {
			return nil, fmt.Errorf("search %s candidates: %w", kind, err)
		}
		kindRows, err := s.hydrate(kind, matches)
		if err != nil {
			return nil, err
		}
		rows = append(rows, kindRows...)
	}

	reranked := rerankRows(queryText, rows)

	var kept []candidateRow
	for _, row := range reranked {
		if row.distance <= s.cfg.SimilarityThreshold {
			kept = append(kept, row)
		}
	}
	if len(kept) > maxResults {
		kept = kept[:maxResults]
	}

	out := make([]Result, len(kept))
	for i, row := range kept {
		out[i] = row.toResult()
	}
	return out, nil
}

func embedQuery(ctx context.Context, provider embed.Provider, queryText string) ([]float32, error) {
	vecs, err := provider.Embed(ctx, []string{queryText}, embed.EmbedModeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vector for query")
	}
	return vecs[0], nil
}

// candidateRow is one hydrated candidate carried through reranking; it
// keeps the fields rerank.Candidate needs plus the ones only rendering and
// fusion need (Hash, full row data).
type candidateRow struct {
	id       string
	kind     string
	path     string
	hash     string
	language string
	title    string
	content  string
	symbols  []string
	level    int
	start    int
	end      int
	distance float64
}

func (row candidateRow) toResult() Result {
	return Result{
		ID:         row.id,
		Kind:       row.kind,
		Path:       row.path,
		Hash:       row.hash,
		Language:   row.language,
		Title:      row.title,
		StartLine:  row.start,
		EndLine:    row.end,
		Symbols:    row.symbols,
		Similarity: 1 - row.distance,
		Content:    row.content,
	}
}

func (s *Searcher) hydrate(kind string, matches []store.VectorMatch) ([]candidateRow, error) {
	if len(matches) == 0 {
		return nil, nil
	}
	distanceByID := make(map[string]float64, len(matches))
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		distanceByID[m.ID] = m.Distance
	}

	switch kind {
	case store.KindCode:
		codeRows, err := s.store.GetCodeByIDs(ids)
		if err != nil {
			return nil, err
		}
		out := make([]candidateRow, len(codeRows))
		for i, r := range codeRows {
			out[i] = candidateRow{
				id: r.ID, kind: kind, path: r.Path, hash: r.Hash, language: r.Language,
				content: r.Content, symbols: r.Symbols, start: r.Start, end: r.End,
				distance: distanceByID[r.ID],
			}
		}
		return out, nil
	case store.KindText:
		textRows, err := s.store.GetTextByIDs(ids)
		if err != nil {
			return nil, err
		}
		out := make([]candidateRow, len(textRows))
		for i, r := range textRows {
			out[i] = candidateRow{
				id: r.ID, kind: kind, path: r.Path, hash: r.Hash,
				content: r.Content, start: r.Start, end: r.End,
				distance: distanceByID[r.ID],
			}
		}
		return out, nil
	case store.KindDocument:
		docRows, err := s.store.GetDocumentByIDs(ids)
		if err != nil {
			return nil, err
		}
		out := make([]candidateRow, len(docRows))
		for i, r := range docRows {
			out[i] = candidateRow{
				id: r.ID, kind: kind, path: r.Path, hash: r.Hash, title: r.Title,
				content: r.Content, start: r.Start, end: r.End, level: r.Level,
				distance: distanceByID[r.ID],
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown chunk kind %q", kind)
	}
}

func rerankKind(kind string) string {
	if kind == store.KindDocument {
		return "docs"
	}
	if kind == store.KindCode {
		return "code"
	}
	return "text"
}

func rerankRows(queryText string, rows []candidateRow) []candidateRow {
	if len(rows) == 0 {
		return nil
	}
	byID := make(map[string]candidateRow, len(rows))
	candidates := make([]rerank.Candidate, len(rows))
	for i, row := range rows {
		byID[row.id] = row
		candidates[i] = rerank.Candidate{
			ID:          row.id,
			Kind:        rerankKind(row.kind),
			Path:        row.path,
			Content:     row.content,
			Title:       row.title,
			Symbols:     row.symbols,
			HeaderLevel: row.level,
			Distance:    row.distance,
		}
	}

	reranked := rerank.Rerank(queryText, candidates)
	out := make([]candidateRow, len(reranked))
	for i, c := range reranked {
		row := byID[c.ID]
		row.distance = c.Distance
		out[i] = row
	}
	return out
}

// fuse merges per-query result lists by (path, hash), keeping the
// minimum (best) distance for each key, then re-sorts by distance and
// truncates to maxResults (spec.md §4.H step 7).
func fuse(perQuery [][]Result, maxResults int) []Result {
	type key struct{ path, hash string }
	best := map[key]Result{}
	order := []key{}
	for _, results := range perQuery {
		for _, r := range results {
			k := key{path: r.Path, hash: r.Hash}
			existing, ok := best[k]
			if !ok {
				order = append(order, k)
				best[k] = r
				continue
			}
			if r.Similarity > existing.Similarity {
				best[k] = r
			}
		}
	}

	out := make([]Result, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}
