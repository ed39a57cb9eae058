// Package pipeline wires the retrieval core to its collaborators: the
// embedder, the vector and lexical indexes, and the metadata store. It
// owns ingestion, query-time retrieval and corpus deduplication.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/paperrag/paperrag/internal/chunk"
	"github.com/paperrag/paperrag/internal/config"
	"github.com/paperrag/paperrag/internal/dedup"
	"github.com/paperrag/paperrag/internal/embed"
	"github.com/paperrag/paperrag/internal/quality"
	"github.com/paperrag/paperrag/internal/query"
	"github.com/paperrag/paperrag/internal/rank"
	"github.com/paperrag/paperrag/internal/store"
)

// Pipeline owns the full retrieval stack for one corpus.
type Pipeline struct {
	cfg *config.Config

	embedder embed.Embedder
	vectors  store.VectorStore
	lexical  *store.LexicalIndex
	meta     *store.MetadataStore

	splitter chunk.Splitter
	combiner *rank.Combiner
	reranker *rank.Reranker
	scorer   *quality.Scorer
	expander *query.Expander

	logger *slog.Logger
}

// Deps are the collaborators a Pipeline is assembled from. All fields
// are required except Generator.
type Deps struct {
	Embedder embed.Embedder
	Vectors  store.VectorStore
	Lexical  *store.LexicalIndex
	Meta     *store.MetadataStore

	// Generator optionally backs query expansion with a language model.
	Generator query.Generator
}

// New assembles a Pipeline from configuration and collaborators.
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	opts := chunk.Options{
		MaxSize: cfg.Chunking.MaxSize,
		Overlap: cfg.Chunking.Overlap,
	}

	var splitter chunk.Splitter
	var err error
	if cfg.Chunking.Smart {
		splitter, err = chunk.NewSmartSplitter(opts)
	} else {
		splitter, err = chunk.NewFixedSplitter(opts)
	}
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		embedder: deps.Embedder,
		vectors:  deps.Vectors,
		lexical:  deps.Lexical,
		meta:     deps.Meta,
		splitter: splitter,
		combiner: rank.NewCombiner(rank.Weights{
			Semantic: cfg.Retrieval.SemanticWeight,
			Keyword:  cfg.Retrieval.KeywordWeight,
		}),
		reranker: rank.NewReranker(cfg.Retrieval.DiversityWeight),
		scorer:   quality.NewScorer(),
		expander: query.NewExpander(deps.Generator),
		logger:   slog.Default(),
	}, nil
}

// FindDuplicates runs the batch duplicate scan over a snapshot of the
// corpus, serialized by a file lock in the data directory.
func (p *Pipeline) FindDuplicates(ctx context.Context) ([]dedup.DuplicateGroup, error) {
	lock := dedup.NewBatchLock(p.cfg.Paths.DataDir)
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	corpus, err := p.meta.AllPapers(ctx)
	if err != nil {
		return nil, err
	}

	detector := dedup.NewDetector(dedup.Options{
		TitleThreshold:  p.cfg.Dedup.TitleThreshold,
		AuthorThreshold: p.cfg.Dedup.AuthorThreshold,
	})
	return detector.FindDuplicates(corpus), nil
}

// VersionGroups reports arXiv papers indexed under multiple versions.
func (p *Pipeline) VersionGroups(ctx context.Context) ([]dedup.VersionGroup, error) {
	corpus, err := p.meta.AllPapers(ctx)
	if err != nil {
		return nil, err
	}
	return dedup.VersionGroups(corpus), nil
}

// Stats summarizes the index state.
type Stats struct {
	Papers  int `json:"papers"`
	Chunks  int `json:"chunks"`
	Vectors int `json:"vectors"`
}

// Stats reports corpus and index counts.
func (p *Pipeline) Stats(ctx context.Context) (Stats, error) {
	papers, err := p.meta.PaperCount(ctx)
	if err != nil {
		return Stats{}, err
	}
	chunks, err := p.meta.ChunkCount(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Papers:  papers,
		Chunks:  chunks,
		Vectors: p.vectors.Count(),
	}, nil
}
