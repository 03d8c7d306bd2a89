package lang

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

var rubyMeaningfulKinds = map[string]bool{
	"method":        true,
	"singleton_method": true,
	"class":         true,
	"module":        true,
}

type rubyPlugin struct {
	language *sitter.Language
}

func NewRubyPlugin() Plugin {
	return &rubyPlugin{language: sitter.NewLanguage(ruby.Language())}
}

func (p *rubyPlugin) Name() string         { return "ruby" }
func (p *rubyPlugin) Extensions() []string { return []string{"rb"} }

func (p *rubyPlugin) Regions(source []byte) ([]Region, error) {
	return meaningfulRegions(p.language, p.Name(), source, rubyMeaningfulKinds)
}

func (p *rubyPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "require ", "require_relative ") {
		imports = append(imports, line)
	}
	return imports
}

func (p *rubyPlugin) Exports(source []byte) []string {
	regions, err := p.Regions(source)
	if err != nil {
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

// ResolveImport resolves require_relative against the importing file's
// directory; plain require targets gems, not indexed files, and is left
// unresolved.
func (p *rubyPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	if !strings.HasPrefix(importStr, "require_relative ") {
		return "", false
	}
	rel := strings.Trim(strings.TrimPrefix(importStr, "require_relative "), "'\" ")
	target := path.Join(path.Dir(fromPath), rel)
	if allPaths[target+".rb"] {
		return target + ".rb", true
	}
	if allPaths[target] {
		return target, true
	}
	return "", false
}
