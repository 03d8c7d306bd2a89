package update

import (
	"context"

	"github.com/mvp-joe/codetrace/internal/chunk"
	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/lang"
)

// Default chunking and batching parameters, used whenever a Config field is
// left at its zero value.
const (
	DefaultMarkdownTargetSize = 2000
	DefaultBatchMaxItems      = 64
	DefaultBatchMaxTokens     = 8000
)

// GraphBuilder is the hook index_file (§6) uses to keep the knowledge graph
// in sync with indexed code files. It is satisfied by the graph subsystem;
// Updater treats a nil GraphBuilder as "graph augmentation disabled" and a
// failing one as best-effort (a warning, not a failed index pass).
type GraphBuilder interface {
	BuildForFile(ctx context.Context, path string, codeChunks []chunk.Code) error
	RemoveFile(ctx context.Context, path string) error
}

// Config configures an Updater.
type Config struct {
	Registry     *lang.Registry
	CodeProvider embed.Provider
	TextProvider embed.Provider
	Graph        GraphBuilder // optional

	MarkdownTargetSize int // characters, §4.C
	TextChunkSize      int // characters, 0 uses chunk.DefaultTextChunkSize
	TextOverlap        int // characters, 0 uses chunk.DefaultTextOverlap

	BatchMaxItems  int // chunks per embedding batch, per kind
	BatchMaxTokens int // approx input tokens per embedding batch, per kind
}

func (c Config) withDefaults() Config {
	if c.MarkdownTargetSize <= 0 {
		c.MarkdownTargetSize = DefaultMarkdownTargetSize
	}
	if c.BatchMaxItems <= 0 {
		c.BatchMaxItems = DefaultBatchMaxItems
	}
	if c.BatchMaxTokens <= 0 {
		c.BatchMaxTokens = DefaultBatchMaxTokens
	}
	return c
}
