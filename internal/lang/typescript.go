package lang

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var typescriptMeaningfulKinds = map[string]bool{
	"function_declaration":  true,
	"class_declaration":     true,
	"interface_declaration": true,
	"method_definition":     true,
	"enum_declaration":      true,
	"type_alias_declaration": true,
}

type typescriptPlugin struct {
	language *sitter.Language
	ext      []string
}

func NewTypeScriptPlugin() Plugin {
	return &typescriptPlugin{
		language: sitter.NewLanguage(typescript.LanguageTypescript()),
		ext:      []string{"ts", "tsx"},
	}
}

func (p *typescriptPlugin) Name() string         { return "typescript" }
func (p *typescriptPlugin) Extensions() []string { return p.ext }

func (p *typescriptPlugin) Regions(source []byte) ([]Region, error) {
	return meaningfulRegions(p.language, p.Name(), source, typescriptMeaningfulKinds)
}

func (p *typescriptPlugin) Imports(source []byte) []string {
	var imports []string
	for _, line := range linesWithPrefix(source, "import ") {
		if idx := strings.Index(line, "from "); idx >= 0 {
			imports = append(imports, strings.Trim(strings.TrimSpace(line[idx+5:]), "'\";"))
		} else if idx := strings.Index(line, "require("); idx >= 0 {
			rest := line[idx+len("require("):]
			if end := strings.IndexAny(rest, "'\""); end >= 0 {
				rest = rest[end+1:]
				if endQuote := strings.IndexAny(rest, "'\""); endQuote >= 0 {
					imports = append(imports, rest[:endQuote])
				}
			}
		}
	}
	return imports
}

// Exports are any top-level "export" or "export default" declaration.
func (p *typescriptPlugin) Exports(source []byte) []string {
	regions, err := p.Regions(source)
	if err != nil {
		return nil
	}
	exportedLines := linesWithPrefix(source, "export ")
	if len(exportedLines) == 0 {
		return nil
	}
	var exports []string
	for _, r := range regions {
		if r.Name == "" {
			continue
		}
		for _, line := range exportedLines {
			if strings.Contains(line, " "+r.Name) {
				exports = append(exports, r.Name)
				break
			}
		}
	}
	return dedupe(exports)
}

// ResolveImport implements relative-path resolution with extension
// inference (.ts, then .tsx, then .d.ts) and directory -> index.* rewrite.
func (p *typescriptPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	if !strings.HasPrefix(importStr, ".") {
		return "", false
	}
	target := path.Join(path.Dir(fromPath), importStr)

	for _, ext := range []string{".ts", ".tsx", ".d.ts"} {
		if allPaths[target+ext] {
			return target + ext, true
		}
	}
	if allPaths[target] {
		return target, true
	}
	for _, idx := range []string{"index.ts", "index.tsx"} {
		candidate := path.Join(target, idx)
		if allPaths[candidate] {
			return candidate, true
		}
	}
	return "", false
}
