package lang

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var javaMeaningfulKinds = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"method_declaration":    true,
	"constructor_declaration": true,
}

type javaPlugin struct {
	language *sitter.Language
}

func NewJavaPlugin() Plugin {
	return &javaPlugin{language: sitter.NewLanguage(java.Language())}
}

func (p *javaPlugin) Name() string         { return "java" }
func (p *javaPlugin) Extensions() []string { return []string{"java"} }

func (p *javaPlugin) Regions(source []byte) ([]Region, error) {
	return meaningfulRegions(p.language, p.Name(), source, javaMeaningfulKinds)
}

func (p *javaPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "import ") {
		imports = append(imports, strings.TrimSuffix(strings.TrimPrefix(line, "import "), ";"))
	}
	return imports
}

// Exports lists the name of every named region, methods included; access
// modifiers are not checked, so private and package-private items appear too.
func (p *javaPlugin) Exports(source []byte) []string {
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

// ResolveImport resolves a fully-qualified Java import against indexed
// paths by matching the dotted package/class tail to a source path suffix.
func (p *javaPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	dotted := strings.TrimSuffix(importStr, ".*")
	suffix := strings.ReplaceAll(dotted, ".", "/") + ".java"
	for candidate := range allPaths {
		if strings.HasSuffix(candidate, suffix) {
			return candidate, true
		}
	}
	return "", false
}
