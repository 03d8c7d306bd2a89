package chunk

import (
	"strings"

	"github.com/mvp-joe/codetrace/internal/hash"
)

const (
	DefaultTextChunkSize = 2000
	DefaultTextOverlap   = 200
)

// BuildTextChunks splits content into overlapping character-count windows.
// chunkSize and overlap fall back to the documented defaults when <= 0.
func BuildTextChunks(path, content string, chunkSize, overlap int) []Text {
	if chunkSize <= 0 {
		chunkSize = DefaultTextChunkSize
	}
	if overlap <= 0 || overlap >= chunkSize {
		overlap = DefaultTextOverlap
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lineStarts := lineStartOffsets(content)

	var chunks []Text
	step := chunkSize - overlap
	for start := 0; start < len(content); start += step {
		end := start + chunkSize
		if end > len(content) {
			end = len(content)
		}
		body := content[start:end]

		chunks = append(chunks, Text{
			Base: Base{
				Path:      path,
				Content:   body,
				StartLine: lineForOffset(lineStarts, start),
				EndLine:   lineForOffset(lineStarts, end-1),
				Hash:      hash.TextWindow(body, path, len(chunks)),
			},
		})

		if end == len(content) {
			break
		}
	}
	return chunks
}

// lineStartOffsets returns, for each 1-indexed line, the byte offset its
// first character occupies in content.
func lineStartOffsets(content string) []int {
	starts := []int{0}
	for i, r := range content {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineForOffset(lineStarts []int, offset int) int {
	lo, hi := 0, len(lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}
