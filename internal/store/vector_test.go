package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

func newTestVectorStore(t *testing.T) *HNSWStore {
	t.Helper()
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestHNSWStore_AddAndSearch(t *testing.T) {
	s := newTestVectorStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx,
		[]string{"doc1:0", "doc2:0", "doc3:0"},
		[][]float32{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
		}))

	results, err := s.Search(ctx, []float32{1, 0.1, 0, 0}, 2)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, "doc1:0", results[0].ID)
	assert.Greater(t, results[0].Score, float32(0.9))
}

func TestHNSWStore_DimensionMismatch(t *testing.T) {
	s := newTestVectorStore(t)
	ctx := context.Background()

	err := s.Add(ctx, []string{"a"}, [][]float32{{1, 0}})
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeDimensionMismatch, ragerr.GetCode(err))

	_, err = s.Search(ctx, []float32{1, 0}, 1)
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeDimensionMismatch, ragerr.GetCode(err))
}

func TestHNSWStore_EmptyStoreSearch(t *testing.T) {
	s := newTestVectorStore(t)

	results, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestHNSWStore_ReAddReplacesVector(t *testing.T) {
	s := newTestVectorStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, []string{"doc1:0"}, [][]float32{{1, 0, 0, 0}}))
	require.NoError(t, s.Add(ctx, []string{"doc1:0"}, [][]float32{{0, 1, 0, 0}}))

	assert.Equal(t, 1, s.Count())

	results, err := s.Search(ctx, []float32{0, 1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc1:0", results[0].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
}

func TestHNSWStore_DeleteHidesVector(t *testing.T) {
	s := newTestVectorStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx,
		[]string{"doc1:0", "doc2:0"},
		[][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}))
	require.NoError(t, s.Delete(ctx, []string{"doc1:0"}))

	assert.False(t, s.Contains("doc1:0"))
	assert.True(t, s.Contains("doc2:0"))
	assert.Equal(t, 1, s.Count())

	results, err := s.Search(ctx, []float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "doc1:0", r.ID)
	}
}

func TestHNSWStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.hnsw")

	s := newTestVectorStore(t)
	require.NoError(t, s.Add(ctx,
		[]string{"doc1:0", "doc2:0"},
		[][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}))
	require.NoError(t, s.Save(path))

	loaded, err := NewHNSWStore(VectorStoreConfig{Dimensions: 4})
	require.NoError(t, err)
	defer loaded.Close()
	require.NoError(t, loaded.Load(path))

	assert.Equal(t, 2, loaded.Count())
	results, err := loaded.Search(ctx, []float32{0, 1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc2:0", results[0].ID)
}

func TestHNSWStore_LoadMissingIndex(t *testing.T) {
	s := newTestVectorStore(t)

	err := s.Load(filepath.Join(t.TempDir(), "nope.hnsw"))
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeCorruptIndex, ragerr.GetCode(err))
}

func TestHNSWStore_ClosedStoreRejectsCalls(t *testing.T) {
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 4})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.Error(t, s.Add(ctx, []string{"a"}, [][]float32{{1, 0, 0, 0}}))
	_, searchErr := s.Search(ctx, []float32{1, 0, 0, 0}, 1)
	assert.Error(t, searchErr)
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Contains("a"))
}

func TestNewHNSWStore_RequiresDimensions(t *testing.T) {
	_, err := NewHNSWStore(VectorStoreConfig{})
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeInvalidInput, ragerr.GetCode(err))
}
