// Package graphrag builds and maintains the knowledge-graph layer on top
// of indexed code chunks: one node per source file, relationships between
// files discovered by import resolution and filesystem convention, and an
// optional LLM pass that upgrades the cheap rule-based description and
// surfaces pattern-level relationships for architecturally significant
// files.
package graphrag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvp-joe/codetrace/internal/chunk"
	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/hash"
	"github.com/mvp-joe/codetrace/internal/lang"
	"github.com/mvp-joe/codetrace/internal/store"
)

// nodeDraft is the intermediate form a file passes through on its way to a
// store.GraphNode: everything known before a description and embedding are
// attached.
type nodeDraft struct {
	path      string
	language  string
	kind      string
	symbols   []string
	imports   []string
	exports   []string
	summaries []store.FunctionSummary
	regions   []lang.Region
	sizeLines int
	hash      string
}

// Builder constructs and updates graphrag_nodes/graphrag_relationships rows
// from the code chunks committed by one indexing pass. It implements
// internal/update's GraphBuilder interface.
type Builder struct {
	store      *store.Store
	registry   *lang.Registry
	provider   embed.Provider // embeds the compact node summary string
	summarizer Summarizer     // optional; nil disables LLM-augmented descriptions
	rootDir    string
}

// Option configures a Builder.
type Option func(*Builder)

// WithSummarizer enables LLM-augmented descriptions for architecturally
// significant nodes. Without it, every node gets the cheap rule-based
// description.
func WithSummarizer(s Summarizer) Option {
	return func(b *Builder) { b.summarizer = s }
}

// New builds a Builder rooted at rootDir (used to re-read full file source
// for import/export extraction and function/class counts — the committed
// chunks alone omit file-level import statements).
func New(s *store.Store, registry *lang.Registry, provider embed.Provider, rootDir string, opts ...Option) *Builder {
	b := &Builder{store: s, registry: registry, provider: provider, rootDir: rootDir}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildForFile implements spec.md §4.J for one file's worth of freshly
// committed code chunks: diff against the stored node by content hash,
// construct/describe/embed a new node on change, persist it, then refresh
// the relationships touching it.
func (b *Builder) BuildForFile(ctx context.Context, path string, codeChunks []chunk.Code) error {
	if len(codeChunks) == 0 {
		return nil
	}

	contentHash := hash.GraphNode(chunkContents(codeChunks), path)

	existing, err := b.store.GetNode(path)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load existing node %s: %w", path, err)
	}
	if existing != nil && existing.ContentHash == contentHash {
		return nil // unchanged: retained, step 2
	}

	draft := b.buildDraft(path, codeChunks, contentHash)

	node := store.GraphNode{
		ID:          draft.path,
		DisplayName: filepath.Base(draft.path),
		Kind:        draft.kind,
		Language:    draft.language,
		SizeLines:   draft.sizeLines,
		Symbols:     draft.symbols,
		Imports:     draft.imports,
		Exports:     draft.exports,
		Summaries:   draft.summaries,
		ContentHash: draft.hash,
	}

	description := cheapDescription(draft)
	if b.summarizer != nil && architecturallySignificant(draft) {
		if llmDesc, err := b.summarizer.Describe(ctx, draft); err != nil {
			log.Printf("warning: graph LLM description failed for %s, using rule-based description: %v", path, err)
		} else {
			description = llmDesc
		}
	}

	if b.provider != nil {
		vecs, err := b.provider.Embed(ctx, []string{embeddingText(draft)}, embed.EmbedModePassage)
		if err != nil {
			return fmt.Errorf("embed node %s: %w", path, err)
		}
		node.Embedding = vecs[0]
	}
	node.Description = description

	if err := b.store.UpsertNode(node); err != nil {
		return err
	}

	return b.refreshRelationships(node)
}

// RemoveFile implements spec.md §6's remove_file: purge the node and every
// relationship touching it.
func (b *Builder) RemoveFile(ctx context.Context, path string) error {
	return b.store.DeleteNode(path)
}

// maxAIRelationNodes bounds spec.md §4.J step 5's "batch analyze a small
// set of architecturally significant nodes" — without a cap, a large repo
// could turn this into one LLM call per significant file.
const maxAIRelationNodes = 20

// DiscoverAIRelationships implements spec.md §4.J step 5's optional AI
// augmentation: batch-analyze a small set of architecturally significant
// nodes for pattern-level relationships (implements_pattern,
// dependency_injection, etc.) a rule can't see. A no-op when no summarizer
// is configured. Call it once per indexing pass, after the rule-based
// relationships for every changed file have already been persisted — the
// target-exists check below needs the full current node set.
func (b *Builder) DiscoverAIRelationships(ctx context.Context) error {
	if b.summarizer == nil {
		return nil
	}

	allNodes, err := b.store.AllNodes()
	if err != nil {
		return fmt.Errorf("load nodes for AI relationship discovery: %w", err)
	}

	exists := make(map[string]bool, len(allNodes))
	for _, n := range allNodes {
		exists[n.ID] = true
	}

	var significant []store.GraphNode
	for _, n := range allNodes {
		if architecturallySignificantStored(n) {
			significant = append(significant, n)
		}
		if len(significant) >= maxAIRelationNodes {
			break
		}
	}

	candidateIDs := make([]string, 0, len(significant))
	for _, n := range significant {
		candidateIDs = append(candidateIDs, n.ID)
	}

	for _, n := range significant {
		others := otherIDs(candidateIDs, n.ID)
		if len(others) == 0 {
			continue
		}
		candidates, err := b.summarizer.DiscoverRelationships(ctx, n, others)
		if err != nil {
			log.Printf("warning: AI relationship discovery failed for %s: %v", n.ID, err)
			continue
		}
		for _, c := range candidates {
			// spec.md §4.J step 5: "Only confidence > 0.7 and
			// target-exists-checked edges are kept."
			if c.Confidence <= 0.7 {
				continue
			}
			if c.TargetID == "" || c.TargetID == n.ID || !exists[c.TargetID] {
				continue
			}
			if c.RelationType == "" {
				continue
			}
			rel := store.GraphRelationship{
				SourceID:     n.ID,
				TargetID:     c.TargetID,
				RelationType: c.RelationType,
				Description:  c.Description,
				Confidence:   c.Confidence,
				Weight:       c.Confidence,
			}
			if err := b.store.UpsertRelationship(rel); err != nil {
				return fmt.Errorf("persist AI relationship %s->%s: %w", n.ID, c.TargetID, err)
			}
		}
	}
	return nil
}

func otherIDs(ids []string, exclude string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}

// buildDraft re-reads the file from disk to recover import/export strings
// and AST regions the committed chunks don't individually carry (spec.md
// §4.J step 3's "re-parsing" option); on any read/parse failure it degrades
// to chunk-derived data only, matching §7's "I/O error: file skipped, pass
// continues" policy applied at node-construction granularity.
func (b *Builder) buildDraft(path string, codeChunks []chunk.Code, contentHash string) nodeDraft {
	draft := nodeDraft{
		path:     path,
		language: codeChunks[0].Language,
		kind:     inferKind(path),
		hash:     contentHash,
	}

	symbolSet := map[string]bool{}
	for _, c := range codeChunks {
		if c.EndLine > draft.sizeLines {
			draft.sizeLines = c.EndLine
		}
		for _, s := range c.Symbols {
			if !symbolSet[s] {
				symbolSet[s] = true
				draft.symbols = append(draft.symbols, s)
			}
		}
		name := c.Path
		if len(c.Symbols) > 0 {
			name = c.Symbols[0]
		}
		sig := firstLine(c.Content)
		draft.summaries = append(draft.summaries, store.FunctionSummary{
			Name: name, Signature: sig, StartLine: c.StartLine, EndLine: c.EndLine,
		})
	}
	sort.Strings(draft.symbols)

	plugin, ok := b.registry.ForExtension(strings.TrimPrefix(filepath.Ext(path), "."))
	if !ok {
		return draft
	}
	source, err := os.ReadFile(filepath.Join(b.rootDir, path))
	if err != nil {
		return draft
	}
	draft.imports = plugin.Imports(source)
	draft.exports = plugin.Exports(source)
	regions, err := plugin.Regions(source)
	if err == nil {
		draft.regions = regions
	}
	return draft
}

// refreshRelationships re-runs rule-based discovery for node against every
// other indexed node, replacing node's previous outgoing edges. Existing
// edges from other nodes into node are left alone; they get refreshed the
// next time their own source file changes.
func (b *Builder) refreshRelationships(node store.GraphNode) error {
	allNodes, err := b.store.AllNodes()
	if err != nil {
		return fmt.Errorf("load nodes for relationship discovery: %w", err)
	}

	allPaths := make(map[string]bool, len(allNodes))
	exportsByPath := make(map[string][]string, len(allNodes))
	for _, n := range allNodes {
		allPaths[n.ID] = true
		exportsByPath[n.ID] = n.Exports
	}

	plugin, ok := b.registry.ForExtension(strings.TrimPrefix(filepath.Ext(node.ID), "."))
	if !ok {
		return nil
	}

	rels := discoverRelationships(node, plugin, allPaths, exportsByPath)
	for _, r := range rels {
		if err := b.store.UpsertRelationship(r); err != nil {
			return err
		}
	}
	return nil
}

func chunkContents(chunks []chunk.Code) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

func firstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		return content[:i]
	}
	return content
}

// cheapDescription is spec.md §4.J step 3's default, always-available
// description: "<name> <lang> file with N functions, M classes, L lines".
func cheapDescription(d nodeDraft) string {
	functions, classes := 0, 0
	for _, r := range d.regions {
		k := strings.ToLower(r.Kind)
		switch {
		case strings.Contains(k, "class") || strings.Contains(k, "struct") || strings.Contains(k, "interface") || strings.Contains(k, "trait") || strings.Contains(k, "impl"):
			classes++
		case strings.Contains(k, "function") || strings.Contains(k, "method"):
			functions++
		}
	}
	if len(d.regions) == 0 {
		functions = len(d.summaries)
	}
	return fmt.Sprintf("%s %s file with %d functions, %d classes, %d lines",
		filepath.Base(d.path), d.language, functions, classes, d.sizeLines)
}

// embeddingText is spec.md §4.J step 3's compact embedding input:
// "<name> <lang> symbols: <joined symbols>".
func embeddingText(d nodeDraft) string {
	return fmt.Sprintf("%s %s symbols: %s", filepath.Base(d.path), d.language, strings.Join(d.symbols, ", "))
}
