package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperrag/paperrag/internal/paper"
)

func TestScorer_EmptyMetadataScoresZero(t *testing.T) {
	s := newScorerAt(2026)

	assert.Equal(t, 0.0, s.Score(paper.Metadata{}))
}

func TestScorer_PerfectRecordHitsCeiling(t *testing.T) {
	// Given a record that maxes out every signal
	s := newScorerAt(2026)
	md := paper.Metadata{
		DocumentID:       "doc-1",
		Title:            "Attention Is All You Need For Sequence Transduction",
		Authors:          []string{"Vaswani", "Shazeer", "Parmar"},
		Abstract:         strings.Repeat("a", 300),
		Year:             2026,
		CitationCount:    5000,
		HasOpenAccessPDF: true,
		SourceName:       "arxiv",
	}

	// Then the score is the weight sum, not 1.0
	got := s.Score(md)
	require.InDelta(t, 0.95, got, 1e-9)
	assert.InDelta(t, MaxScore, got, 1e-9)
}

func TestScorer_CitationSignal(t *testing.T) {
	s := newScorerAt(2026)

	tests := []struct {
		name  string
		count int
		want  float64
	}{
		{"zero citations", 0, 0},
		{"saturates at 999", 999, 1.0},
		{"beyond saturation stays capped", 100000, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := paper.Metadata{CitationCount: tt.count}
			assert.InDelta(t, tt.want*CitationWeight, s.Score(md), 1e-9)
		})
	}
}

func TestScorer_CitationSignalIsMonotonic(t *testing.T) {
	s := newScorerAt(2026)

	prev := -1.0
	for _, c := range []int{0, 1, 5, 31, 100, 500, 999, 2000} {
		got := s.Score(paper.Metadata{CitationCount: c})
		require.GreaterOrEqual(t, got, prev, "citations=%d", c)
		prev = got
	}
}

func TestScorer_RecencyTiers(t *testing.T) {
	s := newScorerAt(2026)

	tests := []struct {
		name string
		year int
		want float64
	}{
		{"unknown year", 0, 0},
		{"current year", 2026, 1.0},
		{"one year old", 2025, 1.0},
		{"two years old", 2024, 0.8},
		{"five years old", 2021, 0.8},
		{"six years old", 2020, 0.6},
		{"ten years old", 2016, 0.6},
		{"eleven years old decays linearly", 2015, 1 - 11.0/50},
		{"forty years old hits the floor", 1986, 0.3},
		{"ancient paper stays at the floor", 1900, 0.3},
		{"future year treated as current", 2030, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := paper.Metadata{Year: tt.year}
			assert.InDelta(t, tt.want*RecencyWeight, s.Score(md), 1e-9)
		})
	}
}

func TestScorer_BinarySignals(t *testing.T) {
	s := newScorerAt(2026)

	tests := []struct {
		name string
		md   paper.Metadata
		want float64
	}{
		{"open access", paper.Metadata{HasOpenAccessPDF: true}, OpenAccessWeight},
		{"reputable source arxiv", paper.Metadata{SourceName: "arxiv"}, ReputationWeight},
		{"reputable source semantic scholar", paper.Metadata{SourceName: "semantic_scholar"}, ReputationWeight},
		{"unknown source earns nothing", paper.Metadata{SourceName: "blogspot"}, 0},
		{"two authors", paper.Metadata{Authors: []string{"a", "b"}}, AuthorsWeight},
		{"single author earns nothing", paper.Metadata{Authors: []string{"a"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.md), 1e-9)
		})
	}
}

func TestScorer_AbstractLengthBoundary(t *testing.T) {
	s := newScorerAt(2026)

	atLimit := paper.Metadata{Abstract: strings.Repeat("x", 200)}
	pastLimit := paper.Metadata{Abstract: strings.Repeat("x", 201)}

	assert.Equal(t, 0.0, s.Score(atLimit))
	assert.InDelta(t, AbstractWeight, s.Score(pastLimit), 1e-9)
}

func TestScorer_TitleWordCountBoundaries(t *testing.T) {
	s := newScorerAt(2026)

	title := func(words int) string {
		return strings.TrimSpace(strings.Repeat("word ", words))
	}

	tests := []struct {
		name  string
		words int
		want  float64
	}{
		{"four words too short", 4, 0},
		{"five words qualifies", 5, TitleWeight},
		{"twenty words qualifies", 20, TitleWeight},
		{"twenty one words too long", 21, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := paper.Metadata{Title: title(tt.words)}
			assert.InDelta(t, tt.want, s.Score(md), 1e-9)
		})
	}
}

func TestScorer_PartialRecordSumsItsSignals(t *testing.T) {
	// Given a mid-tier record: 31 citations, three years old, open
	// access, no abstract, one author, short title
	s := newScorerAt(2026)
	md := paper.Metadata{
		Title:            "Short Title",
		Authors:          []string{"solo"},
		Year:             2023,
		CitationCount:    31,
		HasOpenAccessPDF: true,
	}

	want := citationScore(31)*CitationWeight + 0.8*RecencyWeight + OpenAccessWeight
	assert.InDelta(t, want, s.Score(md), 1e-9)
}

func TestScorer_ScoreStaysInRange(t *testing.T) {
	s := newScorerAt(2026)

	records := []paper.Metadata{
		{},
		{CitationCount: 1 << 30, Year: 2026, HasOpenAccessPDF: true,
			SourceName: "arxiv", Abstract: strings.Repeat("a", 10000),
			Authors: []string{"a", "b", "c", "d"},
			Title:   "one two three four five six seven"},
	}
	for _, md := range records {
		got := s.Score(md)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}
