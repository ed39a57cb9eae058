package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/paperrag/paperrag/internal/chunk"
	ragerr "github.com/paperrag/paperrag/internal/errors"
)

// LexicalIndex wraps a Bleve index over chunk text for keyword search.
// Paper text is English prose, so the standard analyzer does the
// tokenizing, lowercasing and stop-word removal.
type LexicalIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// lexicalDocument is the indexed document shape.
type lexicalDocument struct {
	Content string `json:"content"`
}

// NewLexicalIndex opens or creates the index at path. An empty path
// builds an in-memory index for tests. A corrupted on-disk index is
// cleared and recreated; the caller must reindex.
func NewLexicalIndex(path string) (*LexicalIndex, error) {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to create index directory", err)
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		} else if err != nil {
			slog.Warn("lexical_index_open_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, ragerr.New(ragerr.ErrCodeCorruptIndex,
					"lexical index corrupted and cannot be cleared", removeErr)
			}
			slog.Info("lexical_index_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reindex"))
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to open lexical index", err)
	}

	return &LexicalIndex{index: idx, path: path}, nil
}

// Index adds chunks in one batch, keyed by chunk ID. Existing IDs are
// replaced.
func (l *LexicalIndex) Index(ctx context.Context, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "lexical index is closed", nil)
	}

	batch := l.index.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(c.ID(), lexicalDocument{Content: c.Text}); err != nil {
			return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to index chunk", err)
		}
	}
	if err := l.index.Batch(batch); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to execute index batch", err)
	}
	return nil
}

// Search returns chunks matching the query, best first, scored by BM25.
// An empty query returns no hits rather than an error.
func (l *LexicalIndex) Search(ctx context.Context, query string, limit int) ([]LexicalResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "lexical index is closed", nil)
	}

	if strings.TrimSpace(query) == "" {
		return []LexicalResult{}, nil
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit

	result, err := l.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, ragerr.New(ragerr.ErrCodeSearchFailed, "lexical search failed", err)
	}

	results := make([]LexicalResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, LexicalResult{ChunkID: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Delete removes chunks by ID.
func (l *LexicalIndex) Delete(ctx context.Context, ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "lexical index is closed", nil)
	}

	batch := l.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := l.index.Batch(batch); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to delete chunks", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (l *LexicalIndex) Count() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, ragerr.New(ragerr.ErrCodeStoreFailed, "lexical index is closed", nil)
	}

	n, err := l.index.DocCount()
	if err != nil {
		return 0, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to count documents", err)
	}
	return int(n), nil
}

// Close shuts the index down. Safe to call twice.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.index.Close()
}
