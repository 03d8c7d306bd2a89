// Package hash computes the content-addressed identifiers that give every
// chunk its identity across index passes.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Region hashes a code or markdown chunk: SHA-256 over
// (content, path, start_line, end_line).
func Region(content, path string, startLine, endLine int) string {
	return digest(content, path, strconv.Itoa(startLine), strconv.Itoa(endLine))
}

// TextWindow hashes a text chunk: SHA-256 over (content, path, "#", chunk_index).
// The chunk index disambiguates the hash only; the stored path stays bare.
func TextWindow(content, path string, chunkIndex int) string {
	return digest(content, path, "#", strconv.Itoa(chunkIndex))
}

// GraphNode hashes a GraphRAG file node: SHA-256 over the concatenation of
// that file's chunk contents (newline-separated) and the file's path.
func GraphNode(chunkContents []string, path string) string {
	return digest(strings.Join(chunkContents, "\n"), path)
}

func digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
