// Package rank turns raw retrieval candidates into a final ordered,
// diversified answer-context set. It combines externally supplied semantic
// scores with lexical keyword scores, blends in document quality, and caps
// how many passages a single paper may contribute.
//
// All scores are held in [0,1] and every function is pure: safe for
// concurrent use across independent queries without locking.
package rank

// Scoring blend constants. Combined and quality weights follow the observed
// retrieval heuristic; the diversity bonus is configurable per reranker.
const (
	// CombinedWeight is the share of the hybrid score in the final score.
	CombinedWeight = 0.6

	// QualityWeight is the share of the document quality score in the final score.
	QualityWeight = 0.3

	// DefaultDiversityWeight scales the first-seen bonus.
	DefaultDiversityWeight = 0.1

	// FirstSeenBonus is granted to a document's best-ranked candidate.
	FirstSeenBonus = 0.1

	// DefaultMaxPerDocument is the diversity cap: the maximum number of
	// passages one document may contribute to the final result set.
	DefaultMaxPerDocument = 2
)

// SemanticCandidate is a vector-search hit handed in by the external index.
// Score is the raw semantic similarity in [0,1].
type SemanticCandidate struct {
	ChunkID    string
	DocumentID string
	Text       string
	Score      float64
}

// Candidate is a per-query scored passage produced by the hybrid combiner.
// Candidates are never persisted; they live for the duration of one query.
type Candidate struct {
	ChunkID       string
	DocumentID    string
	Text          string
	SemanticScore float64
	KeywordScore  float64
	CombinedScore float64
}

// RankedCandidate is a Candidate enriched with document quality and the
// final blended score. Rank is the 1-indexed position in the output list;
// the ordering is the externally visible contract.
type RankedCandidate struct {
	Candidate
	QualityScore float64
	FinalScore   float64
	Rank         int
}

// Weights configures the relative importance of semantic vs keyword matching.
type Weights struct {
	// Semantic is the weight for the external similarity score.
	Semantic float64

	// Keyword is the weight for the lexical overlap score.
	Keyword float64
}

// DefaultWeights returns the default hybrid search weights.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.7, Keyword: 0.3}
}

// Normalize scales the weights so they sum to 1. If both are zero (or
// negative inputs cancel out), it falls back to semantic-only search and
// reports the fallback so callers can log it.
func (w Weights) Normalize() (Weights, bool) {
	total := w.Semantic + w.Keyword
	if total <= 0 {
		return Weights{Semantic: 1, Keyword: 0}, true
	}
	return Weights{
		Semantic: w.Semantic / total,
		Keyword:  w.Keyword / total,
	}, false
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
