package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSmart(t *testing.T, opts Options) *SmartSplitter {
	t.Helper()
	s, err := NewSmartSplitter(opts)
	require.NoError(t, err)
	return s
}

func paperWithSections() string {
	return `Abstract

We study attention mechanisms in transformer models.

Introduction

Transformers changed natural language processing. The field moved quickly.

Methods

We train on a large corpus of scientific papers.

Results

Our model outperforms the baselines on every benchmark.
`
}

func TestSmartSplitter_SectionsPreferred(t *testing.T) {
	s := mustSmart(t, Options{MaxSize: 500, Overlap: 50})

	chunks := s.Split(paperWithSections(), "doc1")

	require.GreaterOrEqual(t, len(chunks), 3)
	for i, c := range chunks {
		assert.Equal(t, uint32(i), c.Index)
		assert.NotEmpty(t, c.Text)
	}

	// Section bodies end up in separate chunks.
	all := make([]string, len(chunks))
	for i, c := range chunks {
		all[i] = c.Text
	}
	joined := strings.Join(all, "\n")
	assert.Contains(t, joined, "attention mechanisms")
	assert.Contains(t, joined, "scientific papers")
}

func TestSmartSplitter_ParagraphFallback(t *testing.T) {
	// No recognizable headers, but several paragraphs.
	text := strings.Repeat("First topic paragraph with enough words to stand alone.\n\n", 2) +
		"Second topic paragraph, also reasonably sized for grouping.\n\n" +
		"Third paragraph closes the document with a final thought.\n\n" +
		"Fourth paragraph for good measure."
	s := mustSmart(t, Options{MaxSize: 80, Overlap: 10})

	chunks := s.Split(text, "doc1")

	require.GreaterOrEqual(t, len(chunks), 3)
	for i, c := range chunks {
		assert.Equal(t, uint32(i), c.Index)
	}
}

func TestSmartSplitter_ParagraphGroupingMergesShortParagraphs(t *testing.T) {
	paras := []string{
		"P01.", "P02.", "P03.", "P04.", "P05.", "P06.",
		"P07.", "P08.", "P09.", "P10.", "P11.", "P12.",
	}
	text := strings.Join(paras, "\n\n")
	s := mustSmart(t, Options{MaxSize: 30, Overlap: 5})

	chunks := s.Split(text, "doc1")

	// Short paragraphs merge up to MaxSize rather than one chunk each.
	require.GreaterOrEqual(t, len(chunks), 3)
	assert.Less(t, len(chunks), len(paras))
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 30)
	}
}

func TestSmartSplitter_FixedFallback(t *testing.T) {
	// One long unstructured blob: neither sections nor paragraphs apply.
	text := strings.Repeat("dense unbroken prose without structure ", 30)
	s := mustSmart(t, Options{MaxSize: 200, Overlap: 40})

	smartChunks := s.Split(text, "doc1")
	fixedChunks := s.fixed.Split(text, "doc1")

	require.NotEmpty(t, smartChunks)
	assert.Equal(t, fixedChunks, smartChunks)
}

func TestSmartSplitter_EmptyInput(t *testing.T) {
	s := mustSmart(t, Options{MaxSize: 100, Overlap: 20})

	assert.Empty(t, s.Split("", "doc1"))
	assert.Empty(t, s.Split("\n\n  \n", "doc1"))
}

func TestSmartSplitter_OversizedSectionIsSubdivided(t *testing.T) {
	text := "Introduction\n\n" + strings.Repeat("sentence about methods. ", 40) +
		"\n\nResults\n\n" + strings.Repeat("sentence about findings. ", 40) +
		"\n\nConclusion\n\nShort wrap-up."
	s := mustSmart(t, Options{MaxSize: 150, Overlap: 20})

	chunks := s.Split(text, "doc1")

	require.GreaterOrEqual(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 150)
	}
}
