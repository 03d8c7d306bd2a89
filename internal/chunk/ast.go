package chunk

import (
	"strconv"
	"strings"

	"github.com/mvp-joe/codetrace/internal/hash"
	"github.com/mvp-joe/codetrace/internal/lang"
)

// BuildCodeChunks runs the AST-region chunker for one file:
// depth-first over the parse tree, one chunk per meaningful region (already
// folded with its leading comment/decorator by the language plugin),
// skipping regions with empty content.
func BuildCodeChunks(plugin lang.Plugin, path string, source []byte) ([]Code, error) {
	regions, err := plugin.Regions(source)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(source), "\n")
	chunks := make([]Code, 0, len(regions))
	for _, r := range regions {
		content := sliceLines(lines, r.StartLine, r.EndLine)
		if strings.TrimSpace(content) == "" {
			continue
		}
		symbols := r.Symbols
		if len(symbols) == 0 {
			symbols = []string{syntheticSymbol(r)}
		}
		chunks = append(chunks, Code{
			Base: Base{
				Path:      path,
				Content:   content,
				StartLine: r.StartLine,
				EndLine:   r.EndLine,
				Hash:      hash.Region(content, path, r.StartLine, r.EndLine),
			},
			Language: plugin.Name(),
			Symbols:  symbols,
		})
	}
	return chunks, nil
}

func syntheticSymbol(r lang.Region) string {
	return r.Kind + "_" + strconv.Itoa(r.StartLine)
}

// sliceLines returns the inclusive 1-indexed line range [start, end] joined
// with "\n", verbatim — no trimming.
func sliceLines(lines []string, start, end int) string {
	if start < 1 || start > len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}
