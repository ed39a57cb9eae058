package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordScore_EmptyQuery(t *testing.T) {
	assert.Zero(t, KeywordScore("", "some passage text"))
	assert.Zero(t, KeywordScore("a of is", "short tokens are dropped"))
}

func TestKeywordScore_NoOverlap(t *testing.T) {
	assert.Zero(t, KeywordScore("neural networks", "cooking recipes with pasta"))
}

func TestKeywordScore_IdenticalText(t *testing.T) {
	// Full overlap: Jaccard = 1, precision = 1.
	assert.InDelta(t, 1.0, KeywordScore("transformer attention", "transformer attention"), 1e-9)
}

func TestKeywordScore_PartialOverlap(t *testing.T) {
	// Q = {neural, networks}, T = {deep, neural, networks, for, vision}
	// intersection = 2, union = 5, precision = 1
	// score = 0.6*(2/5) + 0.4*1 = 0.64
	score := KeywordScore("neural networks", "deep neural networks for vision")
	assert.InDelta(t, 0.64, score, 1e-9)
}

func TestKeywordScore_CaseAndPunctuationInsensitive(t *testing.T) {
	a := KeywordScore("Graph Neural Networks", "graph neural networks")
	b := KeywordScore("graph, neural; networks!", "GRAPH (neural) NETWORKS.")
	assert.InDelta(t, a, b, 1e-9)
	assert.InDelta(t, 1.0, a, 1e-9)
}

func TestKeywordScore_Bounds(t *testing.T) {
	inputs := []struct{ query, text string }{
		{"attention is all you need", "attention attention attention"},
		{"reinforcement learning from human feedback", "a survey of reinforcement learning"},
		{"x", "y"},
		{"λ-calculus", "lambda calculus basics"},
	}

	for _, in := range inputs {
		score := KeywordScore(in.query, in.text)
		assert.GreaterOrEqual(t, score, 0.0, "query=%q", in.query)
		assert.LessOrEqual(t, score, 1.0, "query=%q", in.query)
	}
}

func TestTokenSet_DropsShortTokens(t *testing.T) {
	tokens := tokenSet("an ML API for the web")

	assert.Contains(t, tokens, "api")
	assert.Contains(t, tokens, "for")
	assert.Contains(t, tokens, "the")
	assert.Contains(t, tokens, "web")
	assert.NotContains(t, tokens, "an")
	assert.NotContains(t, tokens, "ml")
}
