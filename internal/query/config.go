// Package query implements the search pipeline: embed the query, fetch an
// oversampled candidate set per chunk kind, rerank, threshold, truncate,
// fuse multi-query result lists, and render markdown or JSON.
package query

import (
	"github.com/mvp-joe/codetrace/internal/embed"
	"github.com/mvp-joe/codetrace/internal/store"
)

// Mode selects which chunk kinds a search considers.
type Mode string

const (
	ModeCode Mode = "code"
	ModeDocs Mode = "docs"
	ModeText Mode = "text"
	ModeAll  Mode = "all"
)

// DetailLevel controls how much of a result's content is rendered.
type DetailLevel string

const (
	DetailSignatures DetailLevel = "signatures"
	DetailPartial    DetailLevel = "partial"
	DetailFull       DetailLevel = "full"
)

const (
	// DefaultMaxResults is max_results' default when the caller omits it.
	DefaultMaxResults = 3
	MinMaxResults     = 1
	MaxMaxResults     = 20

	MinQueryLen = 3
	MaxQueryLen = 500
	MaxQueries  = 3

	// candidateFloor is the floor in k = max(2*max_results, floor): even a
	// max_results=1 search still samples a reasonable candidate pool for
	// the reranker to choose from.
	candidateFloor = 10

	// DefaultSimilarityThreshold is the strict cutoff applied to reranked
	// distance (lower is better); candidates above it are dropped before
	// truncation.
	DefaultSimilarityThreshold = 0.8

	// partialHeadLines/partialTailLines bound the head-and-tail truncation
	// windows detail_level=partial applies to long content.
	partialHeadLines = 15
	partialTailLines = 10
	partialMaxLines  = partialHeadLines + partialTailLines

	// signatureMaxLines is the teacher's render_utils.rs convention for
	// view_signatures: a declaration longer than this is truncated with an
	// omission marker.
	signatureMaxLines = 5
)

// Config wires the pipeline's dependencies.
type Config struct {
	CodeProvider embed.Provider
	TextProvider embed.Provider

	SimilarityThreshold float64
}

func (c Config) withDefaults() Config {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return c
}

// providerFor returns the embedding provider for a chunk kind: code chunks
// use the code-role provider, text and document chunks share the text-role
// provider (embed.Role only distinguishes "code" and "text").
func (c Config) providerFor(kind string) embed.Provider {
	if kind == store.KindCode {
		return c.CodeProvider
	}
	return c.TextProvider
}
