package lang

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

var phpMeaningfulKinds = map[string]bool{
	"function_definition":       true,
	"method_declaration":        true,
	"class_declaration":         true,
	"interface_declaration":     true,
	"trait_declaration":         true,
	"enum_declaration":          true,
}

type phpPlugin struct {
	language *sitter.Language
}

func NewPHPPlugin() Plugin {
	return &phpPlugin{language: sitter.NewLanguage(php.LanguagePHP())}
}

func (p *phpPlugin) Name() string         { return "php" }
func (p *phpPlugin) Extensions() []string { return []string{"php"} }

func (p *phpPlugin) Regions(source []byte) ([]Region, error) {
	return meaningfulRegions(p.language, p.Name(), source, phpMeaningfulKinds)
}

func (p *phpPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "use ", "require ", "require_once ", "include ", "include_once ") {
		imports = append(imports, strings.TrimSuffix(line, ";"))
	}
	return imports
}

func (p *phpPlugin) Exports(source []byte) []string {
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

// ResolveImport resolves relative require/include paths against the
// importing file's directory; `use` namespace imports have no filesystem
// target and are left unresolved (same_namespace relationships are derived
// structurally instead, see internal/graphrag).
func (p *phpPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	cleaned := strings.Trim(importStr, "'\" ")
	if !strings.HasPrefix(cleaned, ".") && !strings.HasPrefix(cleaned, "/") {
		return "", false
	}
	target := path.Join(path.Dir(fromPath), cleaned)
	if allPaths[target] {
		return target, true
	}
	if allPaths[target+".php"] {
		return target + ".php", true
	}
	return "", false
}
