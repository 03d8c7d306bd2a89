package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codetrace/internal/lang"
)

func TestViewSignatures_ListsMatchingFilesWithDeclarations(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greet.go"), []byte(`package greet

// Hello greets someone.
func Hello(name string) string {
	return "hello " + name
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# ignored, not a code file\n"), 0o644))

	out, err := ViewSignatures(root, []string{"*.go"}, lang.NewRegistry())
	require.NoError(t, err)
	assert.Contains(t, out, "// greet.go")
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "function_declaration")
	assert.NotContains(t, out, "README.md")
}

func TestViewSignatures_TruncatesLongDeclarations(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	body := "package greet\n\nfunc Long() string {\n"
	for i := 0; i < 20; i++ {
		body += "\t_ = 1\n"
	}
	body += "\treturn \"\"\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "long.go"), []byte(body), 0o644))

	out, err := ViewSignatures(root, []string{"*.go"}, lang.NewRegistry())
	require.NoError(t, err)
	assert.Contains(t, out, "more lines omitted")
}

func TestViewSignatures_NoMatchingGlobReturnsEmptyListing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greet.go"), []byte("package greet\n"), 0o644))

	out, err := ViewSignatures(root, []string{"*.py"}, lang.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "\n", out)
}
