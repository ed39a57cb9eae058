package rank

import (
	"sort"
)

// Reranker blends hybrid scores with document quality and a small diversity
// bonus, then orders candidates by the final score.
type Reranker struct {
	diversityWeight float64
}

// NewReranker creates a reranker. A negative diversity weight selects the
// default; zero disables the first-seen bonus entirely.
func NewReranker(diversityWeight float64) *Reranker {
	if diversityWeight < 0 {
		diversityWeight = DefaultDiversityWeight
	}
	return &Reranker{diversityWeight: diversityWeight}
}

// Rerank computes final scores and returns candidates ordered by them,
// descending, with 1-indexed ranks assigned.
//
//	final = 0.6*combined + 0.3*quality + diversityWeight*firstSeenBonus
//
// The first-seen bonus rewards each document's best occurrence. To keep the
// bonus deterministic under input reordering, candidates are first brought
// into canonical order (combined score descending, stable) before the bonus
// is assigned. Documents missing from qualityByDocument contribute a quality
// score of 0, never an error.
func (r *Reranker) Rerank(candidates []Candidate, qualityByDocument map[string]float64) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	if len(candidates) == 0 {
		return ranked
	}

	// Canonical input order: best hybrid match first.
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CombinedScore > ordered[j].CombinedScore
	})

	seen := make(map[string]struct{}, len(ordered))
	for _, c := range ordered {
		quality := clamp01(qualityByDocument[c.DocumentID])

		bonus := 0.0
		if _, ok := seen[c.DocumentID]; !ok {
			bonus = FirstSeenBonus
			seen[c.DocumentID] = struct{}{}
		}

		ranked = append(ranked, RankedCandidate{
			Candidate:    c,
			QualityScore: quality,
			FinalScore:   clamp01(CombinedWeight*c.CombinedScore + QualityWeight*quality + r.diversityWeight*bonus),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

// EnforceDiversity caps how many passages a single document may contribute.
// It iterates the score-sorted list and keeps a candidate only while its
// document's count is below maxPerDocument (default 2 when <= 0).
//
// The output is never longer than the input and never contains more than
// maxPerDocument entries per document, at the cost of not being the global
// top-N by score alone. Ranks are reassigned to stay dense.
func EnforceDiversity(ranked []RankedCandidate, maxPerDocument int) []RankedCandidate {
	if maxPerDocument <= 0 {
		maxPerDocument = DefaultMaxPerDocument
	}

	counts := make(map[string]int, len(ranked))
	kept := make([]RankedCandidate, 0, len(ranked))

	for _, rc := range ranked {
		if counts[rc.DocumentID] >= maxPerDocument {
			continue
		}
		counts[rc.DocumentID]++
		rc.Rank = len(kept) + 1
		kept = append(kept, rc)
	}

	return kept
}
