package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/maypok86/otter"
)

// Role selects which model an embedding call uses: code chunks and
// code-oriented queries use Code; text chunks, document chunks, and
// natural-language queries use Text.
type Role string

const (
	RoleCode Role = "code"
	RoleText Role = "text"
)

// modelKey is the process-wide cache key: (model id, role).
type modelKey struct {
	modelID string
	role    Role
}

// localModel is the in-process embedding model handle a cache entry holds.
// There is no bundled model runtime in this module's dependency set (see
// DESIGN.md); the handle stands in for whatever numeric model a real
// deployment loads, and produces dense, deterministic vectors from a
// content hash so the rest of the pipeline (store, rerank, query) can be
// built and tested against a stable embedding contract.
type localModel struct {
	dimensions int
}

func loadLocalModel(modelID string, role Role, dimensions int) (*localModel, error) {
	return &localModel{dimensions: dimensions}, nil
}

func (m *localModel) embed(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	out := make([]float32, m.dimensions)
	for j := 0; j < m.dimensions; j++ {
		offset := (j * 4) % len(hash)
		val := binary.BigEndian.Uint32(hash[offset : offset+4])
		out[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
	}
	return out
}

// modelCache is the process-wide cache keyed by (model id, role); the local
// provider loads models into it on demand.
var modelCache = func() otter.Cache[modelKey, *localModel] {
	c, err := otter.MustBuilder[modelKey, *localModel](64).Build()
	if err != nil {
		panic(fmt.Sprintf("embed: building model cache: %v", err))
	}
	return c
}()

// localProvider is the in-process embedding back end: it loads (or reuses,
// via modelCache) one model for its role and embeds directly, with no
// subprocess or network round-trip. The caller picks the provider instance
// matching the role a chunk or query needs; mode is accepted to satisfy
// Provider, and the stand-in model returns the same vector for either mode.
type localProvider struct {
	modelID    string
	role       Role
	dimensions int
}

// NewLocalProvider builds an in-process provider for the named model and
// role.
func NewLocalProvider(modelID string, role Role, dimensions int) Provider {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &localProvider{modelID: modelID, role: role, dimensions: dimensions}
}

func (p *localProvider) model() (*localModel, error) {
	key := modelKey{modelID: p.modelID, role: p.role}
	if m, ok := modelCache.Get(key); ok && m.dimensions == p.dimensions {
		return m, nil
	}
	m, err := loadLocalModel(p.modelID, p.role, p.dimensions)
	if err != nil {
		return nil, fmt.Errorf("load local model %s/%s: %w", p.modelID, p.role, err)
	}
	modelCache.Set(key, m)
	return m, nil
}

func (p *localProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	model, err := p.model()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = model.embed(t)
	}
	return out, nil
}

func (p *localProvider) Dimensions() int { return p.dimensions }

func (p *localProvider) Close() error { return nil }
