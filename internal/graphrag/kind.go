package graphrag

import (
	"path/filepath"
	"strings"

	"github.com/mvp-joe/codetrace/internal/store"
)

// inferKind classifies a file by its path, matching the filename patterns
// called out in spec.md §4.J and §4.J's AI-augmentation gating (config/
// main files get cheap heuristic treatment before any LLM call).
func inferKind(path string) string {
	base := strings.ToLower(filepath.Base(path))
	name := strings.TrimSuffix(base, filepath.Ext(base))

	switch {
	case strings.HasSuffix(base, "_test.go"), strings.HasSuffix(name, "_test"), strings.HasSuffix(name, ".test"), strings.HasSuffix(name, ".spec"):
		return "test"
	case name == "main":
		return "entry"
	case strings.Contains(name, "config") || strings.Contains(name, "settings"):
		return "config"
	case name == "mod" || name == "lib" || name == "index" || name == "__init__":
		return "module_root"
	default:
		return "module"
	}
}

// architecturallySignificant reports whether a node is complex enough to
// justify an LLM call for its description (spec.md §4.J step 3) or to be a
// candidate for AI-augmented relationship discovery (§4.J step 5). It is
// the same heuristic for both: more than 200 lines, an inferKind of config,
// entry or module_root, more than 15 symbols or 10 exports, an
// interface/trait region, or one of the languages rust, typescript, python
// or go. A "core" path or file name is not checked.
func architecturallySignificant(n nodeDraft) bool {
	if n.sizeLines > 200 {
		return true
	}
	if n.kind == "config" || n.kind == "entry" || n.kind == "module_root" {
		return true
	}
	if len(n.symbols) > 15 || len(n.exports) > 10 {
		return true
	}
	for _, r := range n.regions {
		k := strings.ToLower(r.Kind)
		if strings.Contains(k, "interface") || strings.Contains(k, "trait") {
			return true
		}
	}
	switch n.language {
	case "rust", "typescript", "python", "go":
		return true
	}
	return false
}

// architecturallySignificantStored applies the same heuristic as
// architecturallySignificant to an already-persisted store.GraphNode, for
// the batch AI-relationship pass (spec.md §4.J step 5), which runs over
// nodes loaded back from internal/store rather than freshly built drafts.
// AST region data isn't persisted on a node, so the interface/trait check
// is skipped; everything else carries over unchanged.
func architecturallySignificantStored(n store.GraphNode) bool {
	if n.SizeLines > 200 {
		return true
	}
	kind := inferKind(n.ID)
	if kind == "config" || kind == "entry" || kind == "module_root" {
		return true
	}
	if len(n.Symbols) > 15 || len(n.Exports) > 10 {
		return true
	}
	switch n.Language {
	case "rust", "typescript", "python", "go":
		return true
	}
	return false
}
