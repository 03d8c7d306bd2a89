package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_Embed(t *testing.T) {
	t.Parallel()

	p := NewLocalProvider("model-a", RoleCode, 64)
	out, err := p.Embed(context.Background(), []string{"hello", "world"}, EmbedModePassage)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0], 64)
	assert.Len(t, out[1], 64)
	assert.NotEqual(t, out[0], out[1])
}

func TestLocalProvider_Deterministic(t *testing.T) {
	t.Parallel()

	p := NewLocalProvider("model-a", RoleCode, 32)
	a, err := p.Embed(context.Background(), []string{"same text"}, EmbedModePassage)
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), []string{"same text"}, EmbedModePassage)
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
}

func TestLocalProvider_ModelCacheSharedAcrossInstances(t *testing.T) {
	t.Parallel()

	p1 := NewLocalProvider("shared-model", RoleText, 16)
	p2 := NewLocalProvider("shared-model", RoleText, 16)

	a, err := p1.Embed(context.Background(), []string{"x"}, EmbedModeQuery)
	require.NoError(t, err)
	b, err := p2.Embed(context.Background(), []string{"x"}, EmbedModeQuery)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLocalProvider_DefaultDimensions(t *testing.T) {
	t.Parallel()

	p := NewLocalProvider("m", RoleCode, 0)
	assert.Equal(t, 384, p.Dimensions())
}

func TestLocalProvider_Close(t *testing.T) {
	t.Parallel()

	p := NewLocalProvider("m", RoleCode, 16)
	assert.NoError(t, p.Close())
}
