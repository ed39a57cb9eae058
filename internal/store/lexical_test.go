package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperrag/paperrag/internal/chunk"
)

func newTestLexicalIndex(t *testing.T) *LexicalIndex {
	t.Helper()
	idx, err := NewLexicalIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestLexicalIndex_IndexAndSearch(t *testing.T) {
	idx := newTestLexicalIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, []chunk.Chunk{
		{DocumentID: "d1", Index: 0, Text: "transformer attention mechanisms for translation"},
		{DocumentID: "d2", Index: 0, Text: "convolutional networks for image classification"},
	}))

	results, err := idx.Search(ctx, "attention transformer", 10)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, "d1:0", results[0].ChunkID)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestLexicalIndex_EmptyQueryReturnsNoHits(t *testing.T) {
	idx := newTestLexicalIndex(t)

	results, err := idx.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestLexicalIndex_Delete(t *testing.T) {
	idx := newTestLexicalIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, []chunk.Chunk{
		{DocumentID: "d1", Index: 0, Text: "transformer models"},
		{DocumentID: "d2", Index: 0, Text: "transformer architectures"},
	}))
	require.NoError(t, idx.Delete(ctx, []string{"d1:0"}))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := idx.Search(ctx, "transformer", 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "d1:0", r.ChunkID)
	}
}

func TestLexicalIndex_ReindexReplacesContent(t *testing.T) {
	idx := newTestLexicalIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, []chunk.Chunk{
		{DocumentID: "d1", Index: 0, Text: "original topic"},
	}))
	require.NoError(t, idx.Index(ctx, []chunk.Chunk{
		{DocumentID: "d1", Index: 0, Text: "replacement subject"},
	}))

	n, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := idx.Search(ctx, "original", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalIndex_ClosedIndexRejectsCalls(t *testing.T) {
	idx, err := NewLexicalIndex("")
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	ctx := context.Background()
	assert.Error(t, idx.Index(ctx, []chunk.Chunk{{DocumentID: "d1", Text: "x"}}))
	_, searchErr := idx.Search(ctx, "x", 1)
	assert.Error(t, searchErr)
}
