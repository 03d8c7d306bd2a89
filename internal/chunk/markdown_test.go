package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentChunks_Empty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, BuildDocumentChunks("doc.md", "", 1000))
	assert.Nil(t, BuildDocumentChunks("doc.md", "   \n\t ", 1000))
}

func TestBuildDocumentChunks_SmallDocFitsOneChunk(t *testing.T) {
	t.Parallel()

	content := "# Title\n\nSome intro text.\n\n## Section\n\nBody.\n"
	chunks := BuildDocumentChunks("doc.md", content, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Title", chunks[0].Title)
	assert.NotContains(t, chunks[0].Content, "# Title")
}

func TestBuildDocumentChunks_SplitsLargeSiblingsSeparately(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("word ", 400) // ~2000 chars, bigger than small target
	content := "# Doc\n\n## A\n\n" + big + "\n\n## B\n\n" + big + "\n"

	chunks := BuildDocumentChunks("doc.md", content, 200)
	require.True(t, len(chunks) >= 2, "expected section A and B split into separate chunks, got %d", len(chunks))

	titles := map[string]bool{}
	for _, c := range chunks {
		titles[c.Title] = true
	}
	assert.True(t, titles["A"] || titles["B"])
}

func TestBuildDocumentChunks_ParentWithSmallChildIsOneChunk(t *testing.T) {
	t.Parallel()

	content := "# Top\n\n## Child\n\nsome text here\n"
	chunks := BuildDocumentChunks("doc.md", content, 10000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Top", chunks[0].Title)
}

func TestBuildDocumentChunks_HashesAreStableAndUnique(t *testing.T) {
	t.Parallel()

	content := "# A\n\ntext a\n\n# B\n\ntext b\n"
	chunks := BuildDocumentChunks("doc.md", content, 5)
	seen := map[string]bool{}
	for _, c := range chunks {
		assert.NotEmpty(t, c.Hash)
		assert.False(t, seen[c.Hash])
		seen[c.Hash] = true
	}
}

func TestHeadingLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, headingLevel("# Title"))
	assert.Equal(t, 2, headingLevel("## Sub"))
	assert.Equal(t, 0, headingLevel("#NoSpace"))
	assert.Equal(t, 0, headingLevel("plain text"))
	assert.Equal(t, 0, headingLevel(""))
}
