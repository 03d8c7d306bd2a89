// Package codetrace wires the indexing and query subsystems
// (internal/update, internal/query, internal/graphrag,
// internal/graphquery, internal/memory) into the external interface
// spec.md §6 describes: a JSON-RPC or CLI adapter sits in front of an
// Engine and calls its methods directly.
package codetrace

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mvp-joe/codetrace/internal/discover"
	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/graphquery"
	"github.com/mvp-joe/codetrace/internal/graphrag"
	"github.com/mvp-joe/codetrace/internal/lang"
	"github.com/mvp-joe/codetrace/internal/memory"
	"github.com/mvp-joe/codetrace/internal/query"
	"github.com/mvp-joe/codetrace/internal/store"
	"github.com/mvp-joe/codetrace/internal/update"
)

// Config wires every Engine dependency. RootDir is the project root both
// discovery and the updater resolve paths against.
type Config struct {
	RootDir  string
	Registry *lang.Registry // nil uses lang.NewRegistry()

	CodeProvider embed.Provider
	TextProvider embed.Provider

	// GraphEnabled enables GraphRAG augmentation during index_file/full_index and
	// the graphrag_* query operations. false disables both: Engine.Graph*
	// methods return an error, and indexing skips graph updates.
	GraphEnabled bool
	Summarizer   graphrag.Summarizer // optional LLM-augmented descriptions

	Update update.Config
	Query  query.Config
}

// Engine is the embeddable core spec.md §6 describes: index_file,
// remove_file, full_index on the write side; search, view_signatures,
// and the graphrag_* operations on the read side.
type Engine struct {
	rootDir      string
	registry     *lang.Registry
	store        *store.Store
	disco        *discover.Discovery
	updater      *update.Updater
	searcher     *query.Searcher
	memory       *memory.Store
	graph        *graphquery.Searcher // nil when GraphEnabled is false
	graphBuilder *graphrag.Builder    // nil when GraphEnabled is false
}

// Open creates (if absent) the store schema in db and wires every
// subsystem against it.
func Open(db *sql.DB, dim int, cfg Config) (*Engine, error) {
	s, err := store.Open(db, dim)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = lang.NewRegistry()
	}

	updateCfg := cfg.Update
	updateCfg.Registry = registry
	updateCfg.CodeProvider = cfg.CodeProvider
	updateCfg.TextProvider = cfg.TextProvider

	var graphSearcher *graphquery.Searcher
	var graphBuilder *graphrag.Builder
	if cfg.GraphEnabled {
		builderOpts := []graphrag.Option{}
		if cfg.Summarizer != nil {
			builderOpts = append(builderOpts, graphrag.WithSummarizer(cfg.Summarizer))
		}
		graphBuilder = graphrag.New(s, registry, cfg.CodeProvider, cfg.RootDir, builderOpts...)
		updateCfg.Graph = graphBuilder
		graphSearcher = graphquery.New(s, cfg.CodeProvider)
	}

	queryCfg := cfg.Query
	queryCfg.CodeProvider = cfg.CodeProvider
	queryCfg.TextProvider = cfg.TextProvider

	return &Engine{
		rootDir:      cfg.RootDir,
		registry:     registry,
		store:        s,
		disco:        discover.New(cfg.RootDir, registry),
		updater:      update.New(s, cfg.RootDir, updateCfg),
		searcher:     query.New(s, queryCfg),
		memory:       memory.New(s, cfg.TextProvider),
		graph:        graphSearcher,
		graphBuilder: graphBuilder,
	}, nil
}

// Store exposes the underlying columnar store for adapters that need
// direct access (e.g. clearing before a forced reindex).
func (e *Engine) Store() *store.Store { return e.store }

// Search implements spec.md §6's search(query|[query], mode, detail_level,
// max_results) → markdown.
func (e *Engine) Search(ctx context.Context, req query.Request) (string, error) {
	results, err := e.searcher.Search(ctx, req)
	if err != nil {
		return "", err
	}
	mode, detail := req.Mode, req.Detail
	if mode == "" {
		mode = query.ModeAll
	}
	if detail == "" {
		detail = query.DetailPartial
	}
	return query.RenderMarkdown(results, mode, detail), nil
}

// ViewSignatures implements spec.md §6's view_signatures(globs) → markdown.
func (e *Engine) ViewSignatures(globs []string) (string, error) {
	return query.ViewSignatures(e.rootDir, globs, e.registry)
}

// GraphRAGSearch implements spec.md §6's graphrag_search(query) → markdown.
func (e *Engine) GraphRAGSearch(ctx context.Context, q string, maxResults int) (string, error) {
	if e.graph == nil {
		return "", fmt.Errorf("graph augmentation is disabled")
	}
	return e.graph.RenderSearch(ctx, q, maxResults)
}

// GraphRAGGetNode implements spec.md §6's graphrag_get_node(id).
func (e *Engine) GraphRAGGetNode(id string) (store.GraphNode, bool, error) {
	if e.graph == nil {
		return store.GraphNode{}, false, fmt.Errorf("graph augmentation is disabled")
	}
	return e.graph.GetNode(id)
}

// GraphRAGGetRelationships implements spec.md §6's
// graphrag_get_relationships(id).
func (e *Engine) GraphRAGGetRelationships(id string) (graphquery.Relationships, error) {
	if e.graph == nil {
		return graphquery.Relationships{}, fmt.Errorf("graph augmentation is disabled")
	}
	return e.graph.GetRelationships(id)
}

// GraphRAGFindPath implements spec.md §6's
// graphrag_find_path(src, dst, max_depth).
func (e *Engine) GraphRAGFindPath(src, dst string, maxDepth int) ([][]string, error) {
	if e.graph == nil {
		return nil, fmt.Errorf("graph augmentation is disabled")
	}
	return e.graph.FindPaths(src, dst, maxDepth)
}

// GraphRAGOverview implements spec.md §6's graphrag_overview().
func (e *Engine) GraphRAGOverview() (string, error) {
	if e.graph == nil {
		return "", fmt.Errorf("graph augmentation is disabled")
	}
	return e.graph.RenderOverview()
}

// Memory exposes the free-form note subsystem (spec.md §4.L), which sits
// alongside the chunk/graph stores rather than behind its own §6 verb.
func (e *Engine) Memory() *memory.Store { return e.memory }

// IndexFile implements spec.md §6's index_file(path): classify path,
// reconcile its chunks, flush pending embedding batches, and — if graph
// augmentation is enabled — reload the in-memory graph so a subsequent
// graphrag_* call sees the update.
func (e *Engine) IndexFile(ctx context.Context, path string) (inserted, deleted int, err error) {
	f := e.disco.ClassifyFile(path)
	inserted, deleted, err = e.updater.IndexFile(ctx, f, false)
	if err != nil {
		return inserted, deleted, err
	}
	if err := e.updater.FlushAll(ctx); err != nil {
		return inserted, deleted, err
	}
	e.reloadGraph()
	return inserted, deleted, nil
}

// RemoveFile implements spec.md §6's remove_file(path): purge every chunk
// table and the graph node/relationships touching path.
func (e *Engine) RemoveFile(ctx context.Context, path string) error {
	if err := e.updater.RemoveFile(ctx, path); err != nil {
		return err
	}
	e.reloadGraph()
	return nil
}

// FullIndex implements spec.md §6's full_index(root): walk the project
// from discovery, reconcile every file against what's stored, flush, and —
// if graph augmentation with an LLM summarizer is enabled — run the batch
// AI-relationship pass (spec.md §4.J step 5) across the whole graph before
// reloading the in-memory view.
func (e *Engine) FullIndex(ctx context.Context, force bool) (update.Stats, error) {
	stats, err := e.updater.FullIndex(ctx, e.disco, force)
	if err != nil {
		return stats, err
	}
	if e.graphBuilder != nil {
		if err := e.graphBuilder.DiscoverAIRelationships(ctx); err != nil {
			return stats, err
		}
	}
	e.reloadGraph()
	return stats, nil
}

func (e *Engine) reloadGraph() {
	if e.graph != nil {
		e.graph.Reload()
	}
}
