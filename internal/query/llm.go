package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Generator produces text from a prompt. Implementations wrap an external
// language model; failures are expected and handled here.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Expander rewrites queries into alternative phrasings. With a Generator
// attached it asks the model for related queries; without one, or whenever
// the model call fails or returns nothing usable, it falls back to the
// deterministic table-based expansion. Expansion never returns an error.
type Expander struct {
	gen    Generator
	logger *slog.Logger
}

// NewExpander builds an Expander. gen may be nil for deterministic-only
// operation.
func NewExpander(gen Generator) *Expander {
	return &Expander{gen: gen, logger: slog.Default()}
}

const expandPrompt = `Given this research query: %q

Generate up to 4 related search queries that would help find relevant research papers.
Include synonyms, related concepts, alternative phrasings, and broader or narrower terms.
Return only the queries, one per line, without numbering.`

// Expand returns up to MaxVariants query strings, the first always the
// original query.
func (e *Expander) Expand(ctx context.Context, q string) []string {
	if e.gen == nil {
		return Expand(q)
	}

	text, err := e.gen.Generate(ctx, fmt.Sprintf(expandPrompt, q))
	if err != nil {
		e.logger.Warn("query_expansion_fallback", "error", err, "query", q)
		return Expand(q)
	}

	variants := parseVariants(text, q)
	if len(variants) == 0 {
		e.logger.Warn("query_expansion_fallback", "reason", "empty_generation", "query", q)
		return Expand(q)
	}

	expanded := append([]string{q}, variants...)
	if len(expanded) > MaxVariants {
		expanded = expanded[:MaxVariants]
	}
	return expanded
}

// parseVariants pulls usable query lines out of a model response,
// dropping blanks and echoes of the original query.
func parseVariants(text, original string) []string {
	variants := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, original) {
			continue
		}
		variants = append(variants, line)
	}
	return variants
}
