// Package store is the persistence layer: HNSW vector index for chunk
// embeddings, SQLite for paper metadata and chunk text, and a Bleve index
// for lexical search.
package store

import "context"

// VectorStoreConfig configures the HNSW vector index.
type VectorStoreConfig struct {
	// Dimensions is the embedding dimension; all vectors must match.
	Dimensions int

	// Metric selects the distance function: "cos" (default) or "l2".
	Metric string

	// M is the HNSW connectivity parameter.
	M int

	// EfSearch is the HNSW search breadth parameter.
	EfSearch int
}

// VectorResult is one nearest-neighbor hit.
type VectorResult struct {
	// ID is the chunk ID the vector was stored under.
	ID string

	// Distance is the raw metric distance to the query.
	Distance float32

	// Score is the distance converted to a similarity in [0, 1].
	Score float32
}

// VectorStore indexes embeddings by chunk ID.
type VectorStore interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Delete(ctx context.Context, ids []string) error
	Contains(id string) bool
	Count() int
	Close() error
}

// LexicalResult is one full-text search hit.
type LexicalResult struct {
	// ChunkID identifies the matching chunk.
	ChunkID string

	// Score is the raw BM25-style relevance score; unbounded above.
	Score float64
}
