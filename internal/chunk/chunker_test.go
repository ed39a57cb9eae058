package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFixed(t *testing.T, opts Options) *FixedSplitter {
	t.Helper()
	s, err := NewFixedSplitter(opts)
	require.NoError(t, err)
	return s
}

func TestFixedSplitter_EmptyInput(t *testing.T) {
	s := mustFixed(t, Options{MaxSize: 100, Overlap: 20})

	assert.Empty(t, s.Split("", "doc1"))
	assert.Empty(t, s.Split("   \n\t  ", "doc1"))
}

func TestFixedSplitter_ShortTextSingleChunk(t *testing.T) {
	s := mustFixed(t, Options{MaxSize: 100, Overlap: 20})

	chunks := s.Split("A short abstract about transformers.", "doc1")

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short abstract about transformers.", chunks[0].Text)
	assert.Equal(t, uint32(0), chunks[0].Index)
	assert.Equal(t, "doc1", chunks[0].DocumentID)
	assert.Equal(t, "doc1:0", chunks[0].ID())
}

func TestFixedSplitter_LongTextProducesMultipleChunks(t *testing.T) {
	// 250 characters with max_size=100, overlap=20 must yield at least 2 chunks.
	text := strings.Repeat("word ", 50) // 250 chars
	s := mustFixed(t, Options{MaxSize: 100, Overlap: 20})

	chunks := s.Split(text, "doc1")

	assert.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.NotEmpty(t, c.Text)
		assert.LessOrEqual(t, len([]rune(c.Text)), 100)
	}
}

func TestFixedSplitter_DenseIndices(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 40)
	s := mustFixed(t, Options{MaxSize: 120, Overlap: 30})

	chunks := s.Split(text, "doc1")

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, uint32(i), c.Index)
	}
}

func TestFixedSplitter_SentenceBoundaryBackoff(t *testing.T) {
	// A sentence boundary past 50% of max_size should become the cut point.
	first := strings.Repeat("a", 70) + ". "
	second := strings.Repeat("b", 100)
	s := mustFixed(t, Options{MaxSize: 100, Overlap: 10})

	chunks := s.Split(first+second, "doc1")

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("a", 70)+".", chunks[0].Text)
}

func TestFixedSplitter_BoundaryBeforeHalfwayKeepsHardCut(t *testing.T) {
	// The only boundary sits at 30% of max_size; the hard cut must win to
	// avoid degenerate tiny chunks.
	text := strings.Repeat("a", 30) + ". " + strings.Repeat("b", 200)
	s := mustFixed(t, Options{MaxSize: 100, Overlap: 10})

	chunks := s.Split(text, "doc1")

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 100, len([]rune(chunks[0].Text)))
}

func TestFixedSplitter_OverlapCoversText(t *testing.T) {
	// Consecutive chunk spans must leave no gap: every chunk after the first
	// starts at or before the previous chunk's end.
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 30)
	s := mustFixed(t, Options{MaxSize: 150, Overlap: 40})

	chunks := s.Split(text, "doc1")

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 0, chunks[0].StartOffset)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].StartOffset, chunks[i-1].EndOffset,
			"chunk %d must start within or at the previous chunk's span", i)
		assert.Greater(t, chunks[i].EndOffset, chunks[i-1].EndOffset)
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, len([]rune(normalizeLineEndings(text))), last.EndOffset)
}

func TestFixedSplitter_TinyOverlapStillTerminates(t *testing.T) {
	// Overlap close to max_size must not stall the scan.
	text := strings.Repeat("x. ", 200)
	s := mustFixed(t, Options{MaxSize: 10, Overlap: 9})

	chunks := s.Split(text, "doc1")

	assert.NotEmpty(t, chunks)
}

func TestFixedSplitter_NormalizesLineEndings(t *testing.T) {
	s := mustFixed(t, Options{MaxSize: 100, Overlap: 10})

	chunks := s.Split("line one\r\nline two\rline three", "doc1")

	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Text, "\r")
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{MaxSize: 100, Overlap: 20}, false},
		{"zero overlap", Options{MaxSize: 100, Overlap: 0}, false},
		{"zero max size", Options{MaxSize: 0, Overlap: 0}, true},
		{"negative overlap", Options{MaxSize: 100, Overlap: -1}, true},
		{"overlap equals max", Options{MaxSize: 100, Overlap: 100}, true},
		{"overlap exceeds max", Options{MaxSize: 100, Overlap: 150}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFixedSplitter_ZeroOptionsUseDefaults(t *testing.T) {
	s, err := NewFixedSplitter(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSize, s.opts.MaxSize)
	assert.Equal(t, DefaultOverlap, s.opts.Overlap)
}
