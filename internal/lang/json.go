package lang

import (
	"fmt"
	"strings"
)

// jsonPlugin has no tree-sitter grammar anywhere in the retrieved corpus;
// it emits one region per top-level key using brace-depth scanning instead
// of a real parse tree. This is a pragmatic simplification, not the AST
// chunker's default path — see DESIGN.md.
type jsonPlugin struct{}

func NewJSONPlugin() Plugin { return jsonPlugin{} }

func (jsonPlugin) Name() string         { return "json" }
func (jsonPlugin) Extensions() []string { return []string{"json"} }

func (jsonPlugin) Regions(source []byte) ([]Region, error) {
	lines := strings.Split(string(source), "\n")
	var regions []Region
	depth := 0
	var curStart int
	var curKey string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if depth == 1 && curKey == "" {
			if idx := strings.Index(trimmed, ":"); idx > 0 && strings.HasPrefix(trimmed, "\"") {
				curKey = strings.Trim(trimmed[:idx], "\" ")
				curStart = i + 1
			}
		}
		depth += strings.Count(line, "{") + strings.Count(line, "[")
		depth -= strings.Count(line, "}") + strings.Count(line, "]")
		if depth <= 1 && curKey != "" {
			regions = append(regions, Region{
				Kind:      "json_value",
				Name:      curKey,
				StartLine: curStart,
				EndLine:   i + 1,
				Symbols:   []string{curKey},
			})
			curKey = ""
		}
	}
	if len(regions) == 0 && len(lines) > 0 {
		regions = append(regions, Region{
			Kind:      "json_document",
			Name:      "",
			StartLine: 1,
			EndLine:   len(lines),
			Symbols:   []string{fmt.Sprintf("json_document_%d", 1)},
		})
	}
	return regions, nil
}

func (jsonPlugin) Imports(source []byte) []string { return nil }
func (jsonPlugin) Exports(source []byte) []string { return nil }

func (jsonPlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	return "", false
}
