package graphrag

import (
	"path/filepath"
	"strings"

	"github.com/mvp-joe/codetrace/internal/lang"
	"github.com/mvp-joe/codetrace/internal/store"
)

// discoverRelationships implements spec.md §4.J step 5's rule-based pass:
// import resolution, sibling-module, filesystem containment, and a handful
// of language-specific module-root conventions. It never touches an LLM;
// the optional AI-augmentation pass in builder.go layers on top of this.
func discoverRelationships(n store.GraphNode, plugin lang.Plugin, allPaths map[string]bool, exportsByPath map[string][]string) []store.GraphRelationship {
	var rels []store.GraphRelationship

	for _, imp := range n.Imports {
		target, ok := plugin.ResolveImport(imp, n.ID, allPaths)
		if !ok {
			continue
		}
		rels = append(rels, store.GraphRelationship{
			SourceID: n.ID, TargetID: target, RelationType: "imports_direct",
			Confidence: 0.95, Weight: 0.95,
		})
		for _, exp := range exportsByPath[target] {
			if strings.Contains(imp, exp) {
				rels = append(rels, store.GraphRelationship{
					SourceID: target, TargetID: n.ID, RelationType: "exports_to",
					Confidence: 0.95, Weight: 0.95,
				})
				break
			}
		}
	}

	for p := range allPaths {
		if p == n.ID {
			continue
		}
		if filepath.Dir(p) == filepath.Dir(n.ID) && filepath.Ext(p) == filepath.Ext(n.ID) {
			rels = append(rels, store.GraphRelationship{
				SourceID: n.ID, TargetID: p, RelationType: "sibling_module", Confidence: 0.6, Weight: 0.6,
			})
		}
		if isParentChild(n.ID, p) {
			rels = append(rels, store.GraphRelationship{
				SourceID: n.ID, TargetID: p, RelationType: "contains", Confidence: 0.8, Weight: 0.8,
			})
		}
	}

	rels = append(rels, moduleRootRelationships(n, allPaths)...)
	return dedupeRelationships(rels)
}

// isParentChild reports whether b's directory is a direct subdirectory of
// a's directory (filesystem containment, spec.md §4.J step 5).
func isParentChild(a, b string) bool {
	da, db := filepath.Dir(a), filepath.Dir(b)
	if da == db {
		return false
	}
	return filepath.Dir(db) == da
}

// moduleRootRelationships emits a `contains` edge from a language's module
// root file (mod.rs/lib.rs/main.rs, index.*, __init__.py, Go same-package,
// PHP same-namespace) to every sibling file it conventionally aggregates.
func moduleRootRelationships(n store.GraphNode, allPaths map[string]bool) []store.GraphRelationship {
	base := strings.ToLower(filepath.Base(n.ID))
	dir := filepath.Dir(n.ID)
	isRoot := false

	switch n.Language {
	case "rust":
		isRoot = base == "mod.rs" || base == "lib.rs" || base == "main.rs"
	case "typescript", "javascript":
		isRoot = strings.HasPrefix(base, "index.")
	case "python":
		isRoot = base == "__init__.py"
	case "go":
		isRoot = true // same-package: every file in dir shares the package
	case "php":
		isRoot = true // same-namespace: approximated by directory
	}
	if !isRoot {
		return nil
	}

	var rels []store.GraphRelationship
	for p := range allPaths {
		if p == n.ID || filepath.Dir(p) != dir {
			continue
		}
		rels = append(rels, store.GraphRelationship{
			SourceID: n.ID, TargetID: p, RelationType: "contains", Confidence: 0.7, Weight: 0.7,
		})
	}
	return rels
}

// dedupeRelationships enforces spec.md §4.J step 6: unique on
// (source, target, relation_type), first write wins.
func dedupeRelationships(rels []store.GraphRelationship) []store.GraphRelationship {
	seen := make(map[string]bool, len(rels))
	out := make([]store.GraphRelationship, 0, len(rels))
	for _, r := range rels {
		key := r.SourceID + "\x00" + r.TargetID + "\x00" + r.RelationType
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
