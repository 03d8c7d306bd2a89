package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderMarkdown renders results per spec.md §6's render contract: a
// "# Found N <kind>" header, per-file "## File: <path>" groups, then one
// entry per chunk with Language/Lines/Similarity/Symbols and a fenced code
// block whose content respects detail.
func RenderMarkdown(results []Result, mode Mode, detail DetailLevel) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Found %d %s\n\n", len(results), kindLabel(mode))

	byFile, order := groupByFile(results)
	for _, path := range order {
		fmt.Fprintf(&sb, "## File: %s\n\n", path)
		for _, r := range byFile[path] {
			fmt.Fprintf(&sb, "- Language: %s\n", languageOrKind(r))
			fmt.Fprintf(&sb, "- Lines: %d-%d\n", r.StartLine, r.EndLine)
			fmt.Fprintf(&sb, "- Similarity: %.2f\n", r.Similarity)
			if len(r.Symbols) > 0 {
				fmt.Fprintf(&sb, "- Symbols: %s\n", strings.Join(r.Symbols, ", "))
			}
			if r.Title != "" {
				fmt.Fprintf(&sb, "- Title: %s\n", r.Title)
			}
			sb.WriteString("\n```" + fenceTag(r) + "\n")
			sb.WriteString(renderContent(r, detail))
			sb.WriteString("\n```\n\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func kindLabel(mode Mode) string {
	switch mode {
	case ModeCode:
		return "code matches"
	case ModeDocs:
		return "document matches"
	case ModeText:
		return "text matches"
	default:
		return "matches"
	}
}

func languageOrKind(r Result) string {
	if r.Language != "" {
		return r.Language
	}
	return r.Kind
}

func fenceTag(r Result) string {
	if r.Language != "" {
		return r.Language
	}
	return ""
}

func groupByFile(results []Result) (map[string][]Result, []string) {
	byFile := map[string][]Result{}
	var order []string
	for _, r := range results {
		if _, ok := byFile[r.Path]; !ok {
			order = append(order, r.Path)
		}
		byFile[r.Path] = append(byFile[r.Path], r)
	}
	return byFile, order
}

// renderContent applies detail_level to a result's content (spec.md §4.H
// step 8). signatures keeps only the declaration line(s); partial applies
// smart head-and-tail truncation with an explicit omission marker; full
// renders verbatim.
func renderContent(r Result, detail DetailLevel) string {
	switch detail {
	case DetailSignatures:
		return signatureOnly(r.Content)
	case DetailFull:
		return r.Content
	default: // DetailPartial and unset both get the smart-truncation default
		return partialTruncate(r.Content)
	}
}

// signatureOnly keeps everything up through the first opening brace (or
// the first line, for brace-less declarations), mirroring a declaration
// header without its body.
func signatureOnly(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.Contains(line, "{") {
			return strings.Join(lines[:i+1], "\n")
		}
	}
	if len(lines) > 0 {
		return lines[0]
	}
	return content
}

// partialTruncate keeps the first partialHeadLines and last partialTailLines
// of long content, with the literal "// ... N more lines omitted" marker
// between them.
func partialTruncate(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) <= partialMaxLines {
		return content
	}
	omitted := len(lines) - partialHeadLines - partialTailLines
	head := lines[:partialHeadLines]
	tail := lines[len(lines)-partialTailLines:]

	var sb strings.Builder
	sb.WriteString(strings.Join(head, "\n"))
	fmt.Fprintf(&sb, "\n// ... %d more lines omitted\n", omitted)
	sb.WriteString(strings.Join(tail, "\n"))
	return sb.String()
}

// RenderJSON renders results as a JSON array, content already truncated per
// detail (the caller asked for raw structured output, not markdown).
func RenderJSON(results []Result, detail DetailLevel) ([]byte, error) {
	type jsonResult struct {
		ID         string   `json:"id"`
		Kind       string   `json:"kind"`
		Path       string   `json:"path"`
		Language   string   `json:"language,omitempty"`
		Title      string   `json:"title,omitempty"`
		StartLine  int      `json:"start_line"`
		EndLine    int      `json:"end_line"`
		Symbols    []string `json:"symbols,omitempty"`
		Similarity float64  `json:"similarity"`
		Content    string   `json:"content"`
	}
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{
			ID: r.ID, Kind: r.Kind, Path: r.Path, Language: r.Language, Title: r.Title,
			StartLine: r.StartLine, EndLine: r.EndLine, Symbols: r.Symbols,
			Similarity: r.Similarity, Content: renderContent(r, detail),
		}
	}
	return json.Marshal(out)
}
