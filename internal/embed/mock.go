package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// defaultMockDimensions matches the dimensionality of the sentence-transformer
// models codetrace targets in production (spec.md §4.E); tests that need a
// different dimension (e.g. a store opened with dim=0 for "infer from first
// insert") use NewMockProviderWithDimensions instead.
const defaultMockDimensions = 384

// MockProvider is a test Provider that generates deterministic embeddings
// from a content hash, so two test runs over the same text produce the same
// vector without needing a real model. It tracks Close() calls and can be
// configured to simulate Embed/Close failures.
type MockProvider struct {
	mu          sync.Mutex
	dimensions  int
	closeCalled bool
	closeError  error
	embedError  error
}

// NewMockProvider creates a mock embedding provider at the default
// dimensionality.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithDimensions(defaultMockDimensions)
}

// NewMockProviderWithDimensions creates a mock provider emitting vectors of
// a specific dimension, for tests exercising non-default vector stores.
func NewMockProviderWithDimensions(dim int) *MockProvider {
	return &MockProvider{dimensions: dim}
}

// SetCloseError configures the mock to return an error on Close().
func (p *MockProvider) SetCloseError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeError = err
}

// SetEmbedError configures the mock to return an error on Embed().
func (p *MockProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedError = err
}

// newMockProvider creates a mock embedding provider for testing (internal use).
func newMockProvider() Provider {
	return NewMockProvider()
}

// Embed generates mock embeddings by hashing the input text.
// This ensures deterministic, reproducible embeddings for testing.
func (p *MockProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedError != nil {
		return nil, p.embedError
	}

	embeddings := make([][]float32, len(texts))

	for i, text := range texts {
		// Generate deterministic embedding from text hash
		hash := sha256.Sum256([]byte(text))

		embedding := make([]float32, p.dimensions)
		for j := 0; j < p.dimensions; j++ {
			// Use hash bytes to generate float32 values
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			// Normalize to [-1, 1] range
			embedding[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}

		embeddings[i] = embedding
	}

	return embeddings, nil
}

// Dimensions returns the dimensionality of mock embeddings.
func (p *MockProvider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimensions
}

// Close tracks that close was called and returns configured error if set.
func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalled = true
	return p.closeError
}

// IsClosed returns whether Close() has been called.
func (p *MockProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalled
}
