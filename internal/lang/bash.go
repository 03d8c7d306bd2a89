package lang

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
)

var bashMeaningfulKinds = map[string]bool{
	"function_definition": true,
}

type bashPlugin struct {
	language *sitter.Language
}

func NewBashPlugin() Plugin {
	return &bashPlugin{language: bash.GetLanguage()}
}

func (p *bashPlugin) Name() string         { return "bash" }
func (p *bashPlugin) Extensions() []string { return []string{"sh", "bash"} }

func (p *bashPlugin) Regions(source []byte) ([]Region, error) {
	return smackerMeaningfulRegions(p.language, p.Name(), source, bashMeaningfulKinds)
}

func (p *bashPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "source ", ". ") {
		imports = append(imports, line)
	}
	return imports
}

func (p *bashPlugin) Exports(source []byte) []string {
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

// ResolveImport resolves `source`/`.` targets relative to the importing
// script's directory.
func (p *bashPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	fields := strings.Fields(importStr)
	if len(fields) < 2 {
		return "", false
	}
	rel := strings.Trim(fields[1], "'\"")
	target := path.Join(path.Dir(fromPath), rel)
	if allPaths[target] {
		return target, true
	}
	return "", false
}
