package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/paperrag/paperrag/internal/config"
	ragerr "github.com/paperrag/paperrag/internal/errors"
	"github.com/paperrag/paperrag/internal/query"
	"github.com/paperrag/paperrag/internal/rank"
)

// SearchResult is one passage in the final answer-context set.
type SearchResult struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	Title         string  `json:"title"`
	Text          string  `json:"text"`
	SemanticScore float64 `json:"semantic_score"`
	KeywordScore  float64 `json:"keyword_score"`
	CombinedScore float64 `json:"combined_score"`
	QualityScore  float64 `json:"quality_score"`
	FinalScore    float64 `json:"final_score"`
	Rank          int     `json:"rank"`
}

// SearchOptions tune one query. Zero values fall back to the configured
// defaults.
type SearchOptions struct {
	// TopK is how many candidates to pull from each index.
	TopK int

	// MaxPerDocument caps passages per document in the output.
	MaxPerDocument int

	// Mode overrides the configured retrieval mode.
	Mode string
}

// Search runs the full retrieval flow: normalize, expand, gather
// candidates from the selected indexes, combine, re-rank and enforce the
// diversity cap. An empty result is a valid answer, not an error.
func (p *Pipeline) Search(ctx context.Context, rawQuery string, opts SearchOptions) ([]SearchResult, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, ragerr.New(ragerr.ErrCodeQueryEmpty, "query is empty", nil)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = p.cfg.Retrieval.TopK
	}
	maxPerDoc := opts.MaxPerDocument
	if maxPerDoc <= 0 {
		maxPerDoc = p.cfg.Retrieval.MaxPerDocument
	}
	mode := opts.Mode
	if mode == "" {
		mode = p.cfg.Retrieval.Mode
	}

	normalized := query.Normalize(rawQuery)
	variants := p.expander.Expand(ctx, normalized)

	p.logger.Debug("search_started",
		"query", normalized,
		"variants", len(variants),
		"mode", mode,
		"top_k", topK)

	var semantic []rank.SemanticCandidate
	var err error
	switch mode {
	case config.ModeSemantic:
		semantic, err = p.semanticCandidates(ctx, variants, topK)
	case config.ModeLexical:
		semantic, err = p.lexicalCandidates(ctx, normalized, topK)
	default:
		semantic, err = p.hybridCandidates(ctx, normalized, variants, topK)
	}
	if err != nil {
		return nil, err
	}
	if len(semantic) == 0 {
		return []SearchResult{}, nil
	}

	combined := p.combiner.Combine(normalized, semantic)
	ranked := p.reranker.Rerank(combined, p.qualityByDocument(ctx, combined))
	ranked = rank.EnforceDiversity(ranked, maxPerDoc)

	results := make([]SearchResult, 0, len(ranked))
	for _, rc := range ranked {
		title := ""
		if md, found, err := p.meta.GetPaper(ctx, rc.DocumentID); err == nil && found {
			title = md.Title
		}
		results = append(results, SearchResult{
			ChunkID:       rc.ChunkID,
			DocumentID:    rc.DocumentID,
			Title:         title,
			Text:          rc.Text,
			SemanticScore: rc.SemanticScore,
			KeywordScore:  rc.KeywordScore,
			CombinedScore: rc.CombinedScore,
			QualityScore:  rc.QualityScore,
			FinalScore:    rc.FinalScore,
			Rank:          rc.Rank,
		})
	}
	return results, nil
}

// ExpandQuery normalizes a query and returns it with its expansion
// variants, the normalized form always first.
func (p *Pipeline) ExpandQuery(ctx context.Context, rawQuery string) ([]string, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, ragerr.New(ragerr.ErrCodeQueryEmpty, "query is empty", nil)
	}
	normalized := query.Normalize(rawQuery)
	return p.expander.Expand(ctx, normalized), nil
}

// hybridCandidates merges semantic hits for every query variant with
// lexical hits for the normalized query, keeping the best semantic score
// per chunk.
func (p *Pipeline) hybridCandidates(ctx context.Context, normalized string, variants []string, topK int) ([]rank.SemanticCandidate, error) {
	semantic, err := p.semanticCandidates(ctx, variants, topK)
	if err != nil {
		return nil, err
	}

	lexical, err := p.lexicalCandidates(ctx, normalized, topK)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(semantic))
	for i, c := range semantic {
		seen[c.ChunkID] = i
	}
	for _, c := range lexical {
		if i, ok := seen[c.ChunkID]; ok {
			if c.Score > semantic[i].Score {
				semantic[i].Score = c.Score
			}
			continue
		}
		semantic = append(semantic, c)
	}

	sort.SliceStable(semantic, func(i, j int) bool {
		return semantic[i].Score > semantic[j].Score
	})
	if len(semantic) > topK {
		semantic = semantic[:topK]
	}
	return semantic, nil
}

// semanticCandidates embeds every variant concurrently, searches the
// vector index per variant and keeps each chunk's best similarity.
func (p *Pipeline) semanticCandidates(ctx context.Context, variants []string, topK int) ([]rank.SemanticCandidate, error) {
	var mu sync.Mutex
	best := make(map[string]float64)

	g, gctx := errgroup.WithContext(ctx)
	for _, variant := range variants {
		g.Go(func() error {
			vec, err := p.embedder.Embed(gctx, variant)
			if err != nil {
				return err
			}
			hits, err := p.vectors.Search(gctx, vec, topK)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, hit := range hits {
				score := float64(hit.Score)
				if score > best[hit.ID] {
					best[hit.ID] = score
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return p.resolveCandidates(ctx, best, topK)
}

// lexicalCandidates searches the full-text index and squashes the
// unbounded BM25 scores into [0, 1).
func (p *Pipeline) lexicalCandidates(ctx context.Context, normalized string, topK int) ([]rank.SemanticCandidate, error) {
	hits, err := p.lexical.Search(ctx, normalized, topK)
	if err != nil {
		return nil, err
	}

	best := make(map[string]float64, len(hits))
	for _, hit := range hits {
		score := hit.Score / (hit.Score + 1)
		if score > best[hit.ChunkID] {
			best[hit.ChunkID] = score
		}
	}
	return p.resolveCandidates(ctx, best, topK)
}

// resolveCandidates loads chunk text for the scored IDs and returns them
// sorted by score, trimmed to topK. Chunks missing from the metadata
// store are skipped; the indexes may briefly disagree after a delete.
func (p *Pipeline) resolveCandidates(ctx context.Context, scores map[string]float64, topK int) ([]rank.SemanticCandidate, error) {
	candidates := make([]rank.SemanticCandidate, 0, len(scores))
	for id, score := range scores {
		c, found, err := p.meta.GetChunk(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			p.logger.Debug("chunk_missing_from_metadata", "chunk_id", id)
			continue
		}
		candidates = append(candidates, rank.SemanticCandidate{
			ChunkID:    id,
			DocumentID: c.DocumentID,
			Text:       c.Text,
			Score:      score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// qualityByDocument scores each distinct document's metadata. Documents
// without a stored record score zero.
func (p *Pipeline) qualityByDocument(ctx context.Context, candidates []rank.Candidate) map[string]float64 {
	scores := make(map[string]float64)
	for _, c := range candidates {
		if _, ok := scores[c.DocumentID]; ok {
			continue
		}
		md, found, err := p.meta.GetPaper(ctx, c.DocumentID)
		if err != nil || !found {
			scores[c.DocumentID] = 0
			continue
		}
		scores[c.DocumentID] = p.scorer.Score(md)
	}
	return scores
}
