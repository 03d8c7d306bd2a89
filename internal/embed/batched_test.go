package embed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBatched_RespectsItemCap(t *testing.T) {
	t.Parallel()

	p := NewMockProvider()
	texts := []string{"a", "b", "c", "d", "e"}
	out, err := EmbedBatched(context.Background(), p, texts, EmbedModePassage, 2, 0)
	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestEmbedBatched_RespectsTokenCap(t *testing.T) {
	t.Parallel()

	p := NewMockProvider()
	big := strings.Repeat("word ", 100) // ~125 tokens at len/4
	texts := []string{big, big, big}
	out, err := EmbedBatched(context.Background(), p, texts, EmbedModePassage, 0, 150)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestEmbedBatched_Empty(t *testing.T) {
	t.Parallel()

	p := NewMockProvider()
	out, err := EmbedBatched(context.Background(), p, nil, EmbedModePassage, 10, 1000)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEmbedBatched_OversizedSingleItemStillEmbeds(t *testing.T) {
	t.Parallel()

	p := NewMockProvider()
	huge := strings.Repeat("x", 10000)
	out, err := EmbedBatched(context.Background(), p, []string{huge}, EmbedModePassage, 10, 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
}
