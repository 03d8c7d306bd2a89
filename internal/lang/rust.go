package lang

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var rustMeaningfulKinds = map[string]bool{
	"struct_item":      true,
	"enum_item":        true,
	"trait_item":       true,
	"impl_item":        true,
	"function_item":    true,
	"const_item":       true,
	"static_item":      true,
	"mod_item":         true,
	"macro_definition": true,
}

type rustPlugin struct {
	language *sitter.Language
}

func NewRustPlugin() Plugin {
	return &rustPlugin{language: sitter.NewLanguage(rust.Language())}
}

func (p *rustPlugin) Name() string         { return "rust" }
func (p *rustPlugin) Extensions() []string { return []string{"rs"} }

func (p *rustPlugin) Regions(source []byte) ([]Region, error) {
	return meaningfulRegions(p.language, p.Name(), source, rustMeaningfulKinds)
}

func (p *rustPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "use ") {
		use := strings.TrimSuffix(strings.TrimPrefix(line, "use "), ";")
		imports = append(imports, strings.TrimSpace(use))
	}
	return imports
}

func (p *rustPlugin) Exports(source []byte) []string {
	regions, err := p.Regions(source)
	if err != nil {
		return nil
	}
	hasPub := strings.Contains(string(source), "pub ")
	if !hasPub {
		return nil
	}
	var exports []string
	for _, r := range regions {
		if r.Name != "" {
			exports = append(exports, r.Name)
		}
	}
	return dedupe(exports)
}

// ResolveImport implements Rust's module resolution rules:
// crate::a::b::X resolves from the crate root (approximated as "src"),
// self:: resolves against the importing file's directory and super::
// against that directory's parent, and
// a/b.rs is preferred over a/b/mod.rs when both exist.
func (p *rustPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	seg := strings.TrimSuffix(importStr, "::*")
	parts := strings.Split(seg, "::")
	if len(parts) == 0 {
		return "", false
	}

	base := "src"
	rest := parts
	switch parts[0] {
	case "crate":
		rest = parts[1:]
	case "super":
		base = path.Dir(path.Dir(fromPath))
		rest = parts[1:]
	case "self":
		base = path.Dir(fromPath)
		rest = parts[1:]
	default:
		base = path.Dir(fromPath)
	}

	if len(rest) == 0 {
		return "", false
	}
	// Drop the final segment: it names the imported item, not a module.
	modParts := rest[:len(rest)-1]
	if len(modParts) == 0 {
		return "", false
	}

	modPath := path.Join(append([]string{base}, modParts...)...)
	single := modPath + ".rs"
	if allPaths[single] {
		return single, true
	}
	modFile := path.Join(modPath, "mod.rs")
	if allPaths[modFile] {
		return modFile, true
	}
	return "", false
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
