package query

import (
	"strings"
	"unicode"
)

// MaxVariants caps how many query strings Expand ever emits, original
// query included.
const MaxVariants = 5

// maxSupplementTerms caps how many variant terms are joined into the
// supplementary query, keeping it from ballooning past useful length.
const maxSupplementTerms = 3

// stopWords are dropped before variant generation.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"what": {}, "how": {}, "why": {}, "when": {}, "where": {},
}

// synonymTable maps domain terms to related phrasings. Keys may be
// unigrams or bigrams of key terms.
var synonymTable = map[string][]string{
	"neural network":              {"deep learning", "artificial neural network"},
	"transformer":                 {"attention mechanism", "self-attention"},
	"machine learning":            {"statistical learning"},
	"natural language processing": {"computational linguistics"},
}

// KeyTerms extracts the content-bearing tokens of a query: lowercased,
// stripped of punctuation, with stop words and tokens of length two or
// less removed. Order follows the query; duplicates are kept.
func KeyTerms(q string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, q)

	terms := []string{}
	for _, w := range strings.Fields(cleaned) {
		if _, stop := stopWords[w]; stop || len(w) <= 2 {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// Expand produces up to MaxVariants query strings, the first always the
// original query. Deterministic variants come from plural/singular forms
// of the key terms plus synonym-table hits over unigrams and adjacent
// bigrams; they are joined into a single supplementary query string.
func Expand(q string) []string {
	expanded := []string{q}

	terms := KeyTerms(q)
	if len(terms) == 0 {
		return expanded
	}

	variations := []string{}
	for _, term := range terms {
		if strings.HasSuffix(term, "s") {
			variations = append(variations, strings.TrimSuffix(term, "s"))
		} else {
			variations = append(variations, term+"s")
		}
	}

	for _, key := range synonymKeys(terms) {
		if syns, ok := synonymTable[key]; ok {
			variations = append(variations, syns...)
		}
	}

	if len(variations) > maxSupplementTerms {
		variations = variations[:maxSupplementTerms]
	}
	if len(variations) > 0 {
		expanded = append(expanded, strings.Join(variations, " "))
	}

	if len(expanded) > MaxVariants {
		expanded = expanded[:MaxVariants]
	}
	return expanded
}

// synonymKeys lists the lookup keys a term list produces: every unigram
// plus every adjacent bigram, in query order.
func synonymKeys(terms []string) []string {
	keys := make([]string, 0, 2*len(terms))
	for i, t := range terms {
		keys = append(keys, t)
		if i+1 < len(terms) {
			keys = append(keys, t+" "+terms[i+1])
		}
	}
	return keys
}
