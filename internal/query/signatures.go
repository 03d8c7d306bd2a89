package query

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/codetrace/internal/lang"
)

// ViewSignatures renders per-file declaration listings for every file
// under rootDir matching any of globs, grouped by file with a leading
// file-level comment, each declaration's kind/name/line range, and its
// signature truncated to signatureMaxLines with an omission marker — the
// original's render_utils.rs convention (SPEC_FULL.md supplemented
// feature #1).
func ViewSignatures(rootDir string, globs []string, registry *lang.Registry) (string, error) {
	compiled := make([]glob.Glob, len(globs))
	for i, g := range globs {
		compiledGlob, err := glob.Compile(g, '/')
		if err != nil {
			return "", fmt.Errorf("invalid glob %q: %w", g, err)
		}
		compiled[i] = compiledGlob
	}

	var matches []string
	err := filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(rootDir, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matchesAny(compiled, rel) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk %s: %w", rootDir, err)
	}
	sort.Strings(matches)

	var sb strings.Builder
	for _, rel := range matches {
		plugin, ok := registry.ForExtension(strings.TrimPrefix(filepath.Ext(rel), "."))
		if !ok {
			continue
		}
		source, err := os.ReadFile(filepath.Join(rootDir, rel))
		if err != nil {
			continue
		}
		regions, err := plugin.Regions(source)
		if err != nil || len(regions) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "// %s\n\n", rel)
		lines := strings.Split(string(source), "\n")
		for _, r := range regions {
			fmt.Fprintf(&sb, "- %s (%s) lines %d-%d\n", r.Name, r.Kind, r.StartLine, r.EndLine)
			sb.WriteString(truncatedSignature(lines, r.StartLine, r.EndLine))
			sb.WriteString("\n\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func matchesAny(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g != nil && g.Match(rel) {
			return true
		}
	}
	return false
}

// truncatedSignature renders a declaration's lines, capped at
// signatureMaxLines with an explicit omission marker when longer.
func truncatedSignature(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	region := lines[start-1 : end]
	if len(region) <= signatureMaxLines {
		return indent(region)
	}
	omitted := len(region) - signatureMaxLines
	shown := append([]string{}, region[:signatureMaxLines]...)
	shown = append(shown, fmt.Sprintf("// ... %d more lines omitted", omitted))
	return indent(shown)
}

func indent(lines []string) string {
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
