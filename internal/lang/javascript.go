package lang

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

var javascriptMeaningfulKinds = map[string]bool{
	"function_declaration": true,
	"class_declaration":    true,
	"method_definition":    true,
}

type javascriptPlugin struct {
	language *sitter.Language
}

func NewJavaScriptPlugin() Plugin {
	return &javascriptPlugin{language: javascript.GetLanguage()}
}

func (p *javascriptPlugin) Name() string         { return "javascript" }
func (p *javascriptPlugin) Extensions() []string { return []string{"js", "jsx"} }

func (p *javascriptPlugin) Regions(source []byte) ([]Region, error) {
	return smackerMeaningfulRegions(p.language, p.Name(), source, javascriptMeaningfulKinds)
}

func (p *javascriptPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "import ") {
		if idx := strings.Index(line, "from "); idx >= 0 {
			imports = append(imports, strings.Trim(strings.TrimSpace(line[idx+5:]), "'\";"))
		}
	}
	return imports
}

func (p *javascriptPlugin) Exports(source []byte) []string {
	regions, err := p.Regions(source)
	if err != nil {
		return nil
	}
	if !strings.Contains(string(source), "export ") {
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

// ResolveImport handles relative paths, with extension inference and
// directory -> index.* rewrite.
func (p *javascriptPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	if !strings.HasPrefix(importStr, ".") {
		return "", false
	}
	target := path.Join(path.Dir(fromPath), importStr)
	for _, ext := range []string{".js", ".jsx"} {
		if allPaths[target+ext] {
			return target + ext, true
		}
	}
	if allPaths[target] {
		return target, true
	}
	for _, idx := range []string{"index.js", "index.jsx"} {
		candidate := path.Join(target, idx)
		if allPaths[candidate] {
			return candidate, true
		}
	}
	return "", false
}
