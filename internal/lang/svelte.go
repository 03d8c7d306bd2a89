package lang

import (
	"strconv"
	"strings"
)

// sveltePlugin has no tree-sitter grammar anywhere in the retrieved corpus.
// It finds a component's <script> and <style> blocks by tag scanning rather
// than a real parse tree; the markup outside them does not become a region.
// This is a pragmatic simplification — see DESIGN.md.
type sveltePlugin struct{}

func NewSveltePlugin() Plugin { return sveltePlugin{} }

func (sveltePlugin) Name() string         { return "svelte" }
func (sveltePlugin) Extensions() []string { return []string{"svelte"} }

func (sveltePlugin) Regions(source []byte) ([]Region, error) {
	lines := strings.Split(string(source), "\n")
	var regions []Region
	var openTag, kind string
	var start int
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case openTag == "" && strings.HasPrefix(trimmed, "<script"):
			openTag, kind, start = "</script>", "script", i+1
		case openTag == "" && strings.HasPrefix(trimmed, "<style"):
			openTag, kind, start = "</style>", "style", i+1
		case openTag != "" && strings.Contains(trimmed, openTag):
			regions = append(regions, Region{
				Kind:      kind,
				StartLine: start,
				EndLine:   i + 1,
				Symbols:   []string{kind + "_" + strconv.Itoa(start)},
			})
			openTag = ""
		}
	}
	return regions, nil
}

func (sveltePlugin) Imports(source []byte) []string {
	return linesWithPrefix(source, "import ")
}

func (sveltePlugin) Exports(source []byte) []string { return nil }

func (sveltePlugin) ResolveImport(importStr, fromPath string, allPaths map[string]bool) (string, bool) {
	return "", false
}
