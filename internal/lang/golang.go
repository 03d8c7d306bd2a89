package lang

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

var goMeaningfulKinds = map[string]bool{
	"function_declaration": true,
	"method_declaration":   true,
	"type_declaration":     true,
}

type goPlugin struct {
	language *sitter.Language
}

func NewGoPlugin() Plugin {
	return &goPlugin{language: golang.GetLanguage()}
}

func (p *goPlugin) Name() string         { return "go" }
func (p *goPlugin) Extensions() []string { return []string{"go"} }

func (p *goPlugin) Regions(source []byte) ([]Region, error) {
	return smackerMeaningfulRegions(p.language, p.Name(), source, goMeaningfulKinds)
}

func (p *goPlugin) Imports(source []byte) []string {
	var imports []string
	inBlock := false
	for _, raw := range strings.Split(string(source), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "import ("):
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock && line != "":
			imports = append(imports, strings.Trim(line, "\""))
		case strings.HasPrefix(line, "import "):
			imports = append(imports, strings.Trim(strings.TrimPrefix(line, "import "), "\""))
		}
	}
	return imports
}

// Exports are capitalized top-level identifiers, Go's own export rule.
func (p *goPlugin) Exports(source []byte) []string {
	regions, err := p.Regions(source)
	if err != nil {
		return nil
	}
	var exports []string
	for _, r := range regions {
		if r.Name != "" && r.Name[0] >= 'A' && r.Name[0] <= 'Z' {
			exports = append(exports, r.Name)
		}
	}
	return dedupe(exports)
}

// ResolveImport resolves a relative package import to any file in the
// target directory.
func (p *goPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	if !strings.Contains(importStr, "/") {
		return "", false
	}
	dir := path.Join(path.Dir(fromPath), path.Base(importStr))
	for candidate := range allPaths {
		if path.Dir(candidate) == dir {
			return candidate, true
		}
	}
	return "", false
}
