package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"empty", "", ""},
		{"collapses whitespace", "  deep   learning \t papers ", "deep learning papers"},
		{"expands acronym", "nlp transformers", "natural language processing transformers"},
		{"match is case insensitive", "NLP and ML", "natural language processing and machine learning"},
		{"whole tokens only", "nlproc tooling", "nlproc tooling"},
		{"unmatched tokens keep their case", "BERT for CV tasks", "BERT for computer vision tasks"},
		{"multiple acronyms", "ai dl cv", "artificial intelligence deep learning computer vision"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.query))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	queries := []string{
		"nlp for ml",
		"  what   is   AI  ",
		"computer vision",
		"dl",
		"",
	}
	for _, q := range queries {
		once := Normalize(q)
		assert.Equal(t, once, Normalize(once), "query %q", q)
	}
}
