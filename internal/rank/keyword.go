package rank

import (
	"strings"
	"unicode"
)

// minTokenLength filters out very short tokens ("a", "of", "is") that add
// noise to lexical overlap.
const minTokenLength = 3

// KeywordScore computes a lexical overlap score between a query and a
// passage of text, independent of any embedding.
//
// Both strings are lowercased, stripped of punctuation and tokenized on
// whitespace; tokens shorter than three characters are dropped. The score
// blends Jaccard similarity (how much the vocabularies overlap) with
// precision (how many query terms matched):
//
//	score = 0.6*|Q∩T|/|Q∪T| + 0.4*|Q∩T|/|Q|
//
// Returns 0 when the query has no usable tokens. The result is always in [0,1].
func KeywordScore(query, text string) float64 {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return 0
	}
	textTokens := tokenSet(text)

	intersection := 0
	for tok := range queryTokens {
		if _, ok := textTokens[tok]; ok {
			intersection++
		}
	}

	union := len(queryTokens) + len(textTokens) - intersection
	if union == 0 {
		return 0
	}

	jaccard := float64(intersection) / float64(union)
	precision := float64(intersection) / float64(len(queryTokens))

	return clamp01(0.6*jaccard + 0.4*precision)
}

// tokenSet normalizes a string into its set of lexical tokens.
func tokenSet(s string) map[string]struct{} {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		if len(tok) >= minTokenLength {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}
