// Package lang is the language registry: one plugin per supported language,
// selected by file extension, each exposing a grammar-driven region walker,
// a symbol extractor, an import/export extractor, and an import resolver.
package lang

import "strings"

// Region is one AST region a chunker can turn into a code chunk: a
// meaningful node (function, class, impl block, ...) plus any leading
// comment/decorator/attribute sibling folded into its line range.
type Region struct {
	Kind      string
	Name      string
	StartLine int // 1-indexed, inclusive
	EndLine   int // 1-indexed, inclusive
	Symbols   []string
}

// Plugin is the language registry's unit of extension: one implementation
// and one registry entry adds a language.
type Plugin interface {
	Name() string
	Extensions() []string

	// Regions walks the parsed source and returns one Region per meaningful
	// node, in document order, with nested meaningful nodes already excluded
	// (the walker does not recurse into a node once it matches).
	Regions(source []byte) ([]Region, error)

	// Imports returns the raw import strings found anywhere in the file.
	Imports(source []byte) []string

	// Exports returns the names of symbols visible at the module boundary.
	Exports(source []byte) []string

	// ResolveImport resolves importStr, referenced from fromPath, against
	// the set of every indexed file path. ok is false when nothing matches.
	ResolveImport(importStr, fromPath string, allPaths map[string]bool) (resolved string, ok bool)
}

// Registry maps file extensions to the plugin that handles them.
type Registry struct {
	byExt  map[string]Plugin
	byName map[string]Plugin
}

// NewRegistry builds the registry with every built-in language plugin.
func NewRegistry() *Registry {
	r := &Registry{byExt: map[string]Plugin{}, byName: map[string]Plugin{}}
	for _, p := range []Plugin{
		NewRustPlugin(),
		NewPythonPlugin(),
		NewTypeScriptPlugin(),
		NewPHPPlugin(),
		NewRubyPlugin(),
		NewJavaPlugin(),
		NewCPlugin(),
		NewGoPlugin(),
		NewJavaScriptPlugin(),
		NewBashPlugin(),
		NewCSSPlugin(),
		NewSveltePlugin(),
		NewJSONPlugin(),
	} {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a plugin under its declared extensions.
func (r *Registry) Register(p Plugin) {
	r.byName[p.Name()] = p
	for _, ext := range p.Extensions() {
		r.byExt[strings.ToLower(ext)] = p
	}
}

// ForExtension looks up the plugin for a file extension (without the dot,
// case-insensitive). ok is false for extensions with no registered plugin.
func (r *Registry) ForExtension(ext string) (Plugin, bool) {
	p, ok := r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return p, ok
}

// ForLanguage looks up a plugin by its declared name (e.g. "rust").
func (r *Registry) ForLanguage(name string) (Plugin, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Extensions reports every extension the registry routes to a code plugin,
// for the discovery component's classifier.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
