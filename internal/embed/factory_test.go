package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Mock(t *testing.T) {
	t.Parallel()

	provider, err := NewProvider(Config{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, 384, provider.Dimensions())
	assert.NoError(t, provider.Close())
}

func TestNewProvider_Local(t *testing.T) {
	t.Parallel()

	provider, err := NewProvider(Config{Provider: "local", ModelID: "test-model", Role: RoleCode, Dimensions: 128})
	require.NoError(t, err)
	assert.Equal(t, 128, provider.Dimensions())

	ctx := context.Background()
	embeddings, err := provider.Embed(ctx, []string{"func Foo() {}"}, EmbedModePassage)
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.Len(t, embeddings[0], 128)
}

func TestNewProvider_DefaultsToLocal(t *testing.T) {
	t.Parallel()

	provider, err := NewProvider(Config{Provider: ""})
	require.NoError(t, err)
	assert.Equal(t, 384, provider.Dimensions())
}

func TestNewProvider_HTTPRequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewProvider(Config{Provider: "http"})
	assert.Error(t, err)
}

func TestNewProvider_Unsupported(t *testing.T) {
	t.Parallel()

	provider, err := NewProvider(Config{Provider: "unsupported-provider"})
	assert.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "unsupported embedding provider")
}
