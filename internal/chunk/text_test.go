package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTextChunks_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, BuildTextChunks("a.txt", "", 2000, 200))
	assert.Nil(t, BuildTextChunks("a.txt", "   \n  ", 2000, 200))
}

func TestBuildTextChunks_SingleWindow(t *testing.T) {
	t.Parallel()

	content := "line one\nline two\nline three"
	chunks := BuildTextChunks("a.txt", content, 2000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 3, chunks[0].EndLine)
	assert.NotEmpty(t, chunks[0].Hash)
}

func TestBuildTextChunks_Overlap(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("a", 5000)
	chunks := BuildTextChunks("a.txt", content, 2000, 200)
	require.Len(t, chunks, 3)

	for i := 0; i < len(chunks)-1; i++ {
		assert.Len(t, chunks[i].Content, 2000)
	}
	// last chunk is whatever remains
	assert.NotEmpty(t, chunks[len(chunks)-1].Content)

	// hashes disambiguated by chunk index even though content may repeat
	seen := map[string]bool{}
	for _, c := range chunks {
		assert.False(t, seen[c.Hash], "hash collision across windows")
		seen[c.Hash] = true
	}
}

func TestBuildTextChunks_DefaultsApplied(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("b", 100)
	chunks := BuildTextChunks("a.txt", content, 0, -1)
	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
}

func TestBuildTextChunks_PathStaysBare(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("c", 4500)
	chunks := BuildTextChunks("notes/readme.txt", content, 2000, 200)
	for _, c := range chunks {
		assert.Equal(t, "notes/readme.txt", c.Path)
	}
}
