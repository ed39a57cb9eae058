package rank

import (
	"log/slog"
	"sort"
)

// Combiner merges externally supplied semantic similarity scores with
// lexical keyword scores into one ranked candidate list.
type Combiner struct {
	weights Weights
}

// NewCombiner creates a hybrid combiner. Weights are normalized to sum to 1;
// a zero-weight configuration falls back to semantic-only search and emits a
// diagnostic rather than failing the query.
func NewCombiner(weights Weights) *Combiner {
	normalized, fellBack := weights.Normalize()
	if fellBack {
		slog.Warn("hybrid_weights_zero_fallback",
			slog.Float64("semantic", weights.Semantic),
			slog.Float64("keyword", weights.Keyword))
	}
	return &Combiner{weights: normalized}
}

// Weights returns the normalized weights in effect.
func (c *Combiner) Weights() Weights {
	return c.weights
}

// Combine scores every candidate against the query and returns them sorted
// by combined score, descending. The sort is stable: ties preserve input
// order, which is assumed to already be semantic-score order from the
// external index. Empty input returns an empty, non-nil slice.
func (c *Combiner) Combine(query string, candidates []SemanticCandidate) []Candidate {
	combined := make([]Candidate, 0, len(candidates))

	for _, sc := range candidates {
		keyword := KeywordScore(query, sc.Text)
		semantic := clamp01(sc.Score)

		combined = append(combined, Candidate{
			ChunkID:       sc.ChunkID,
			DocumentID:    sc.DocumentID,
			Text:          sc.Text,
			SemanticScore: semantic,
			KeywordScore:  keyword,
			CombinedScore: clamp01(c.weights.Semantic*semantic + c.weights.Keyword*keyword),
		})
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].CombinedScore > combined[j].CombinedScore
	})

	return combined
}
