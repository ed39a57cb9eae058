// Package query normalizes and expands free-text queries before retrieval.
// Normalization is deterministic. Expansion is deterministic by default and
// may be upgraded with a generator-backed variant that always falls back to
// the deterministic path on failure.
package query

import "strings"

// acronymTable maps lowercase whole-token acronyms to their expansions.
var acronymTable = map[string]string{
	"nlp": "natural language processing",
	"ml":  "machine learning",
	"dl":  "deep learning",
	"ai":  "artificial intelligence",
	"cv":  "computer vision",
}

// Normalize collapses whitespace and expands known acronyms. Matching is
// case-insensitive and acts on whole tokens only; unmatched tokens pass
// through untouched. Normalize is idempotent: expansions never contain
// acronym tokens themselves.
func Normalize(q string) string {
	words := strings.Fields(q)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if expansion, ok := acronymTable[strings.ToLower(w)]; ok {
			out = append(out, expansion)
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
