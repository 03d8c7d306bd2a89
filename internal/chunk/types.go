// Package chunk turns classified source files into the three chunk shapes
// the vector store persists: AST-region code chunks, hierarchical markdown
// document chunks, and overlapping-window text chunks.
package chunk

import "strings"

// Base fields every chunk carries
type Base struct {
	Path      string
	Content   string
	StartLine int // 1-indexed, inclusive
	EndLine   int // 1-indexed, inclusive
	Hash      string
	Score     *float64 // similarity score, set only on retrieval
}

// Code is a chunk produced from one AST region of a source file.
type Code struct {
	Base
	Language string
	Symbols  []string
}

// Text is a chunk produced by the overlapping-window text chunker.
type Text struct {
	Base
}

// Document is a chunk produced by the hierarchical markdown chunker.
type Document struct {
	Base
	Title   string
	Context []string
	Level   int
}

// VisibleSymbols filters out synthetic `<kind>_<line>` fallback symbols
// (those containing "_").
func VisibleSymbols(symbols []string) []string {
	var out []string
	for _, s := range symbols {
		if !strings.ContainsRune(s, '_') {
			out = append(out, s)
		}
	}
	return out
}
