package lang

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
)

var cssMeaningfulKinds = map[string]bool{
	"rule_set":   true,
	"media_statement": true,
}

type cssPlugin struct {
	language *sitter.Language
}

func NewCSSPlugin() Plugin {
	return &cssPlugin{language: css.GetLanguage()}
}

func (p *cssPlugin) Name() string         { return "css" }
func (p *cssPlugin) Extensions() []string { return []string{"css"} }

func (p *cssPlugin) Regions(source []byte) ([]Region, error) {
	return smackerMeaningfulRegions(p.language, p.Name(), source, cssMeaningfulKinds)
}

func (p *cssPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "@import ") {
		imports = append(imports, strings.TrimSuffix(strings.TrimPrefix(line, "@import "), ";"))
	}
	return imports
}

// CSS has no module-boundary export concept; selectors are always global.
func (p *cssPlugin) Exports(source []byte) []string { return nil }

// ResolveImport resolves @import targets relative to the importing file's
// directory.
func (p *cssPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	cleaned := strings.Trim(importStr, "'\" ")
	cleaned = strings.TrimPrefix(cleaned, "url(")
	cleaned = strings.TrimSuffix(cleaned, ")")
	cleaned = strings.Trim(cleaned, "'\"")
	if !strings.HasPrefix(cleaned, ".") {
		return "", false
	}
	target := path.Join(path.Dir(fromPath), cleaned)
	if allPaths[target] {
		return target, true
	}
	if allPaths[target+".css"] {
		return target + ".css", true
	}
	return "", false
}
