package lang

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

var cMeaningfulKinds = map[string]bool{
	"function_definition": true,
	"struct_specifier":    true,
	"enum_specifier":      true,
	"union_specifier":     true,
}

type cPlugin struct {
	language *sitter.Language
}

func NewCPlugin() Plugin {
	return &cPlugin{language: sitter.NewLanguage(c.Language())}
}

func (p *cPlugin) Name() string         { return "c" }
func (p *cPlugin) Extensions() []string { return []string{"c", "cc", "cpp", "cxx", "c++", "h", "hpp"} }

func (p *cPlugin) Regions(source []byte) ([]Region, error) {
	return meaningfulRegions(p.language, p.Name(), source, cMeaningfulKinds)
}

func (p *cPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "#include ") {
		imports = append(imports, strings.TrimSpace(strings.TrimPrefix(line, "#include ")))
	}
	return imports
}

func (p *cPlugin) Exports(source []byte) []string {
	regions, err := p.Regions(source)
	if err != nil {
		return nil
	}
	var exports []string
	for _, r := range regions {
		if r.Name != "" && !strings.HasPrefix(r.Name, "_") {
			exports = append(exports, r.Name)
		}
	}
	return dedupe(exports)
}

// ResolveImport searches indexed paths for a header whose basename matches
// the quoted or angle-bracket include target.
func (p *cPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	trimmed := strings.Trim(importStr, "\"<>")
	local := path.Join(path.Dir(fromPath), trimmed)
	if allPaths[local] {
		return local, true
	}
	for candidate := range allPaths {
		if strings.HasSuffix(candidate, "/"+trimmed) || candidate == trimmed {
			return candidate, true
		}
	}
	return "", false
}
