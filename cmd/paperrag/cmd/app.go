package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paperrag/paperrag/internal/config"
	"github.com/paperrag/paperrag/internal/embed"
	"github.com/paperrag/paperrag/internal/pipeline"
	"github.com/paperrag/paperrag/internal/store"
)

// Index file names under the data directory.
const (
	vectorFile   = "vectors.hnsw"
	metadataFile = "metadata.db"
	lexicalDir   = "lexical.bleve"
)

// app holds an assembled pipeline and the stores behind it, so commands
// can open everything once and close it cleanly.
type app struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	embedder embed.Embedder
	vectors  *store.HNSWStore
	lexical  *store.LexicalIndex
	meta     *store.MetadataStore

	vectorPath string
	dirty      bool
}

// openApp loads configuration, opens the on-disk stores and assembles the
// retrieval pipeline. With offline set, the deterministic static embedder
// is used regardless of the configured provider.
func openApp(ctx context.Context, cfgPath string, offline bool) (*app, error) {
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, err
	}

	embedder, err := openEmbedder(ctx, cfg, offline)
	if err != nil {
		return nil, err
	}

	vectors, err := store.NewHNSWStore(store.VectorStoreConfig{
		Dimensions: embedder.Dimensions(),
	})
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}
	vectorPath := filepath.Join(cfg.Paths.DataDir, vectorFile)
	if _, statErr := os.Stat(vectorPath); statErr == nil {
		if err := vectors.Load(vectorPath); err != nil {
			_ = embedder.Close()
			return nil, err
		}
	}

	meta, err := store.NewMetadataStore(filepath.Join(cfg.Paths.DataDir, metadataFile))
	if err != nil {
		_ = embedder.Close()
		_ = vectors.Close()
		return nil, err
	}

	lexical, err := store.NewLexicalIndex(filepath.Join(cfg.Paths.DataDir, lexicalDir))
	if err != nil {
		_ = embedder.Close()
		_ = vectors.Close()
		_ = meta.Close()
		return nil, err
	}

	pipe, err := pipeline.New(cfg, pipeline.Deps{
		Embedder: embedder,
		Vectors:  vectors,
		Lexical:  lexical,
		Meta:     meta,
	})
	if err != nil {
		_ = embedder.Close()
		_ = vectors.Close()
		_ = meta.Close()
		_ = lexical.Close()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		pipe:       pipe,
		embedder:   embedder,
		vectors:    vectors,
		lexical:    lexical,
		meta:       meta,
		vectorPath: vectorPath,
	}, nil
}

// openEmbedder picks the embedding backend. An unreachable Ollama host
// degrades to the static embedder rather than failing the command.
func openEmbedder(ctx context.Context, cfg *config.Config, offline bool) (embed.Embedder, error) {
	if offline || cfg.Embeddings.Provider == "static" {
		return embed.NewCachedEmbedder(embed.NewStaticEmbedder(), cfg.Embeddings.CacheSize), nil
	}

	ollama, err := embed.NewOllamaEmbedder(ctx, embed.OllamaConfig{
		Host:       cfg.Embeddings.OllamaHost,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		BatchSize:  cfg.Embeddings.BatchSize,
	})
	if err != nil {
		slog.Warn("ollama unavailable, using static embeddings",
			slog.String("host", cfg.Embeddings.OllamaHost),
			slog.String("error", err.Error()))
		return embed.NewCachedEmbedder(embed.NewStaticEmbedder(), cfg.Embeddings.CacheSize), nil
	}
	return embed.NewCachedEmbedder(ollama, cfg.Embeddings.CacheSize), nil
}

// markDirty records that the vector index has changed and needs saving.
func (a *app) markDirty() {
	a.dirty = true
}

// Close persists the vector index if it changed and releases every store.
func (a *app) Close() error {
	var firstErr error
	if a.dirty {
		if err := a.vectors.Save(a.vectorPath); err != nil {
			firstErr = err
		}
	}
	for _, c := range []interface{ Close() error }{a.lexical, a.meta, a.vectors, a.embedder} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
