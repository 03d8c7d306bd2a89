package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertVectors_DeferredDimension(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 0)
	err := s.UpsertVectors(KindCode, []string{"c1"}, [][]float32{{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, s.dim)
}

func TestUpsertVectors_ReplacesExisting(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 3)
	require.NoError(t, s.UpsertVectors(KindCode, []string{"c1"}, [][]float32{{1, 0, 0}}))
	require.NoError(t, s.UpsertVectors(KindCode, []string{"c1"}, [][]float32{{0, 1, 0}}))

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM code_blocks_vec WHERE id = 'c1'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSearchVectors_OrdersByCosineDistance(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 3)
	require.NoError(t, s.UpsertVectors(KindCode, []string{"near", "far"}, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}))

	matches, err := s.SearchVectors(KindCode, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "near", matches[0].ID)
}

func TestSearchVectors_CandidateSizeTracksRefineFactor(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 2)
	ids := make([]string, 0, 30)
	vectors := make([][]float32, 0, 30)
	for i := 0; i < 30; i++ {
		ids = append(ids, fmt.Sprintf("v%d", i))
		vectors = append(vectors, []float32{float32(i), 1})
	}
	require.NoError(t, s.UpsertVectors(KindCode, ids, vectors))

	matches, err := s.SearchVectors(KindCode, []float32{0, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 10*refineFactor(30), "below the refine threshold, refineFactor is 1 so the candidate set is exactly requestedMax")
}

func TestDeleteVectors_RemovesRows(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 3)
	require.NoError(t, s.UpsertVectors(KindCode, []string{"c1", "c2"}, [][]float32{{1, 0, 0}, {0, 1, 0}}))
	require.NoError(t, s.DeleteVectors(KindCode, []string{"c1"}))

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM code_blocks_vec").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestIndexParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		n, dim               int
		wantMinPartitions    int
		wantMaxPartitions    int
		wantRowsPerPartBound bool
	}{
		{"small table floors at 2 partitions", 10, 128, 2, 2, true},
		{"thousand rows roughly sqrt", 1000, 128, 30, 40, true},
		{"large table still bounded well under the 1024 cap", 200000, 128, 400, 500, true},
		{"beyond what 1024 partitions can bound, cap wins anyway", 100000000, 128, 1024, 1024, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			partitions, subVectors := indexParams(tt.n, tt.dim)
			assert.GreaterOrEqual(t, partitions, tt.wantMinPartitions)
			assert.LessOrEqual(t, partitions, tt.wantMaxPartitions)
			if tt.wantRowsPerPartBound {
				assert.LessOrEqual(t, tt.n/partitions, 8000)
			}
			assert.GreaterOrEqual(t, subVectors, 1)
			assert.LessOrEqual(t, subVectors, tt.dim)
		})
	}
}

func TestRefineFactor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, refineFactor(100))
	assert.Equal(t, 10, refineFactor(20000))
	assert.Equal(t, 20, refineFactor(200000))
}

func TestMaybeReoptimize_RecordsParamsAtMilestone(t *testing.T) {
	t.Parallel()

	s := NewTestStore(t, 4)
	ids := make([]string, minIndexRows)
	vectors := make([][]float32, minIndexRows)
	for i := range ids {
		ids[i] = randomID(i)
		vectors[i] = []float32{float32(i), 0, 0, 0}
	}
	require.NoError(t, s.UpsertVectors(KindCode, ids, vectors))

	var value string
	err := s.DB().QueryRow("SELECT value FROM store_metadata WHERE key = ?", KindCode+"_index_params").Scan(&value)
	require.NoError(t, err)
	assert.Contains(t, value, `"rows":1000`)
}

func randomID(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 0, 8)
	for i > 0 || len(b) == 0 {
		b = append(b, letters[i%26])
		i /= 26
	}
	return string(b) + "-id"
}
