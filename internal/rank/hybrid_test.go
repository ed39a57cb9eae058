package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombiner_RelevantCandidateRanksFirst(t *testing.T) {
	// Given: one on-topic candidate with a high semantic score and one
	// off-topic candidate with a low one
	candidates := []SemanticCandidate{
		{ChunkID: "p1:0", DocumentID: "p1", Text: "deep neural networks for vision", Score: 0.9},
		{ChunkID: "p2:0", DocumentID: "p2", Text: "cooking recipes", Score: 0.1},
	}
	combiner := NewCombiner(Weights{Semantic: 0.7, Keyword: 0.3})

	// When: combining against the query
	results := combiner.Combine("neural networks", candidates)

	// Then: the on-topic candidate ranks strictly above the off-topic one
	require.Len(t, results, 2)
	assert.Equal(t, "p1:0", results[0].ChunkID)
	assert.Greater(t, results[0].CombinedScore, results[1].CombinedScore)
}

func TestCombiner_ZeroWeightsFallBackToSemanticOnly(t *testing.T) {
	combiner := NewCombiner(Weights{Semantic: 0, Keyword: 0})

	results := combiner.Combine("neural networks", []SemanticCandidate{
		{ChunkID: "p1:0", DocumentID: "p1", Text: "neural networks explained", Score: 0.42},
	})

	require.Len(t, results, 1)
	assert.Equal(t, Weights{Semantic: 1, Keyword: 0}, combiner.Weights())
	assert.InDelta(t, 0.42, results[0].CombinedScore, 1e-9)
}

func TestCombiner_WeightsNormalizedBySum(t *testing.T) {
	a := NewCombiner(Weights{Semantic: 0.7, Keyword: 0.3})
	b := NewCombiner(Weights{Semantic: 1.4, Keyword: 0.6})

	candidates := []SemanticCandidate{
		{ChunkID: "p1:0", DocumentID: "p1", Text: "graph neural networks", Score: 0.8},
	}

	ra := a.Combine("graph networks", candidates)
	rb := b.Combine("graph networks", candidates)

	require.Len(t, ra, 1)
	require.Len(t, rb, 1)
	assert.InDelta(t, ra[0].CombinedScore, rb[0].CombinedScore, 1e-9)
}

func TestCombiner_StableSortPreservesInputOrderOnTies(t *testing.T) {
	// Identical scores: input order (semantic-score order from the external
	// index) must survive.
	candidates := []SemanticCandidate{
		{ChunkID: "p1:0", DocumentID: "p1", Text: "unrelated words entirely", Score: 0.5},
		{ChunkID: "p2:0", DocumentID: "p2", Text: "different tokens altogether", Score: 0.5},
	}
	combiner := NewCombiner(DefaultWeights())

	results := combiner.Combine("quantum chemistry", candidates)

	require.Len(t, results, 2)
	assert.Equal(t, "p1:0", results[0].ChunkID)
	assert.Equal(t, "p2:0", results[1].ChunkID)
}

func TestCombiner_EmptyInputReturnsEmpty(t *testing.T) {
	combiner := NewCombiner(DefaultWeights())

	results := combiner.Combine("anything", nil)

	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCombiner_ScoreBounds(t *testing.T) {
	candidates := []SemanticCandidate{
		{ChunkID: "p1:0", DocumentID: "p1", Text: "neural networks neural networks", Score: 1.0},
		{ChunkID: "p2:0", DocumentID: "p2", Text: "nothing in common", Score: 0.0},
		// An out-of-range score from a misbehaving index is clamped, not propagated.
		{ChunkID: "p3:0", DocumentID: "p3", Text: "neural networks", Score: 1.7},
	}
	combiner := NewCombiner(DefaultWeights())

	for _, r := range combiner.Combine("neural networks", candidates) {
		assert.GreaterOrEqual(t, r.CombinedScore, 0.0)
		assert.LessOrEqual(t, r.CombinedScore, 1.0)
		assert.LessOrEqual(t, r.SemanticScore, 1.0)
	}
}

func TestCombiner_SemanticWeightMonotonicity(t *testing.T) {
	// For the candidate holding the maximum semantic score, increasing the
	// semantic weight never decreases its combined score.
	candidates := []SemanticCandidate{
		{ChunkID: "p1:0", DocumentID: "p1", Text: "loosely related passage", Score: 0.95},
		{ChunkID: "p2:0", DocumentID: "p2", Text: "neural networks survey", Score: 0.4},
	}

	low := NewCombiner(Weights{Semantic: 0.5, Keyword: 0.5}).Combine("neural networks", candidates)
	high := NewCombiner(Weights{Semantic: 0.8, Keyword: 0.2}).Combine("neural networks", candidates)

	scoreOf := func(results []Candidate, chunkID string) float64 {
		for _, r := range results {
			if r.ChunkID == chunkID {
				return r.CombinedScore
			}
		}
		t.Fatalf("chunk %s not found", chunkID)
		return 0
	}

	assert.GreaterOrEqual(t, scoreOf(high, "p1:0"), scoreOf(low, "p1:0"))
}
