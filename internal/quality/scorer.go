// Package quality scores papers on metadata heuristics. The score is a
// weighted sum over independent signals; each weight caps that signal's
// contribution, and missing metadata contributes zero rather than erroring.
//
// The weights sum to 0.95, not 1.0: a perfect record scores 0.95, and
// MaxScore names that ceiling.
package quality

import (
	"math"
	"strings"
	"time"

	"github.com/paperrag/paperrag/internal/paper"
)

// Signal weights. Together they sum to 0.95.
const (
	CitationWeight   = 0.30
	RecencyWeight    = 0.20
	OpenAccessWeight = 0.15
	ReputationWeight = 0.10
	AbstractWeight   = 0.10
	AuthorsWeight    = 0.05
	TitleWeight      = 0.05
)

// MaxScore is the ceiling a perfect metadata record reaches.
const MaxScore = CitationWeight + RecencyWeight + OpenAccessWeight +
	ReputationWeight + AbstractWeight + AuthorsWeight + TitleWeight

const (
	// citationSaturation is the citation count at which the citation
	// signal saturates at its full weight.
	citationSaturation = 1000

	// minAbstractLength is the character count past which an abstract
	// counts as substantive.
	minAbstractLength = 200

	minTitleWords = 5
	maxTitleWords = 20
)

// reputableSources are catalogs whose records earn the reputation signal.
var reputableSources = map[string]struct{}{
	"arxiv":            {},
	"semantic_scholar": {},
}

// Scorer computes quality scores for paper metadata.
type Scorer struct {
	// nowYear supplies the current year for recency scoring.
	nowYear func() int
}

// NewScorer returns a Scorer that measures recency against the wall clock.
func NewScorer() *Scorer {
	return &Scorer{nowYear: func() int { return time.Now().Year() }}
}

// newScorerAt pins the clock for deterministic tests.
func newScorerAt(year int) *Scorer {
	return &Scorer{nowYear: func() int { return year }}
}

// Score computes the quality score for md in [0, MaxScore].
func (s *Scorer) Score(md paper.Metadata) float64 {
	score := citationScore(md.CitationCount)*CitationWeight +
		s.recencyScore(md.Year)*RecencyWeight

	if md.HasOpenAccessPDF {
		score += OpenAccessWeight
	}
	if _, ok := reputableSources[md.SourceName]; ok {
		score += ReputationWeight
	}
	if len(md.Abstract) > minAbstractLength {
		score += AbstractWeight
	}
	if len(md.Authors) >= 2 {
		score += AuthorsWeight
	}
	if n := countWords(md.Title); n >= minTitleWords && n <= maxTitleWords {
		score += TitleWeight
	}

	return clamp01(score)
}

// citationScore maps a citation count onto [0, 1] on a log scale that
// saturates at citationSaturation citations.
func citationScore(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(1, math.Log(1+float64(count))/math.Log(citationSaturation))
}

// recencyScore rewards recent publication years in tiers, with a slow
// linear decay and a floor for older papers. An unknown year scores zero.
func (s *Scorer) recencyScore(year int) float64 {
	if year <= 0 {
		return 0
	}
	age := s.nowYear() - year
	if age < 0 {
		age = 0
	}
	switch {
	case age <= 1:
		return 1.0
	case age <= 5:
		return 0.8
	case age <= 10:
		return 0.6
	default:
		return math.Max(0.3, 1-float64(age)/50)
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
