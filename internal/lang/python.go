package lang

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pythonMeaningfulKinds = map[string]bool{
	"function_definition": true,
	"class_definition":    true,
	"decorated_definition": true,
}

type pythonPlugin struct {
	language *sitter.Language
}

func NewPythonPlugin() Plugin {
	return &pythonPlugin{language: sitter.NewLanguage(python.Language())}
}

func (p *pythonPlugin) Name() string         { return "python" }
func (p *pythonPlugin) Extensions() []string { return []string{"py"} }

func (p *pythonPlugin) Regions(source []byte) ([]Region, error) {
	return meaningfulRegions(p.language, p.Name(), source, pythonMeaningfulKinds)
}

func (p *pythonPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "import ", "from ") {
		imports = append(imports, line)
	}
	return imports
}

// Exports are top-level non-underscore-prefixed defs and classes.
func (p *pythonPlugin) Exports(source []byte) []string {
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

// ResolveImport implements the leading-dot relative import rule: dots are
// resolved against the file's own directory, and __init__.py acts as the
// package head when the target is a package.
func (p *pythonPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	fields := strings.Fields(importStr)
	if len(fields) < 2 {
		return "", false
	}
	module := fields[1]
	if !strings.HasPrefix(module, ".") {
		return "", false
	}

	dir := path.Dir(fromPath)
	dots := 0
	for dots < len(module) && module[dots] == '.' {
		dots++
	}
	for i := 1; i < dots; i++ {
		dir = path.Dir(dir)
	}
	rest := strings.TrimPrefix(module[dots:], ".")
	rest = strings.ReplaceAll(rest, ".", "/")

	var target string
	if rest == "" {
		target = dir
	} else {
		target = path.Join(dir, rest)
	}

	single := target + ".py"
	if allPaths[single] {
		return single, true
	}
	initFile := path.Join(target, "__init__.py")
	if allPaths[initFile] {
		return initFile, true
	}
	return "", false
}
