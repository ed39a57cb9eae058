package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"github.com/paperrag/paperrag/internal/chunk"
	ragerr "github.com/paperrag/paperrag/internal/errors"
	"github.com/paperrag/paperrag/internal/paper"
)

// MetadataStore persists paper records and chunk text in SQLite.
type MetadataStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// NewMetadataStore opens (or creates) the store at path. An empty path
// opens an in-memory database for tests.
func NewMetadataStore(path string) (*MetadataStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to create data directory", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to open database", err)
	}

	// Single writer prevents SQLite lock contention; the pragmas must be
	// set via statements because modernc.org/sqlite ignores DSN params.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to set pragma", err)
		}
	}

	s := &MetadataStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to initialize schema", err)
	}
	return s, nil
}

func (s *MetadataStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS papers (
		document_id    TEXT PRIMARY KEY,
		title          TEXT NOT NULL DEFAULT '',
		authors        TEXT NOT NULL DEFAULT '[]',
		abstract       TEXT NOT NULL DEFAULT '',
		year           INTEGER NOT NULL DEFAULT 0,
		doi            TEXT NOT NULL DEFAULT '',
		arxiv_id       TEXT NOT NULL DEFAULT '',
		corpus_id      TEXT NOT NULL DEFAULT '',
		citation_count INTEGER NOT NULL DEFAULT 0,
		open_access    INTEGER NOT NULL DEFAULT 0,
		source_name    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id     TEXT PRIMARY KEY,
		document_id  TEXT NOT NULL,
		chunk_index  INTEGER NOT NULL,
		text         TEXT NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertPaper inserts or replaces a paper record.
func (s *MetadataStore) UpsertPaper(ctx context.Context, md paper.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}
	if md.DocumentID == "" {
		return ragerr.New(ragerr.ErrCodeInvalidInput, "paper has no document ID", nil)
	}

	authors, err := json.Marshal(md.Authors)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to encode authors", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO papers
		(document_id, title, authors, abstract, year, doi, arxiv_id,
		 corpus_id, citation_count, open_access, source_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		md.DocumentID, md.Title, string(authors), md.Abstract, md.Year,
		md.ExternalIDs.DOI, md.ExternalIDs.ArxivID, md.ExternalIDs.CorpusID,
		md.CitationCount, boolToInt(md.HasOpenAccessPDF), md.SourceName)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to upsert paper", err)
	}
	return nil
}

// GetPaper returns the record for a document ID; found is false when the
// paper is not indexed.
func (s *MetadataStore) GetPaper(ctx context.Context, documentID string) (paper.Metadata, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return paper.Metadata{}, false, ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, title, authors, abstract, year, doi, arxiv_id,
		       corpus_id, citation_count, open_access, source_name
		FROM papers WHERE document_id = ?`, documentID)

	md, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return paper.Metadata{}, false, nil
	}
	if err != nil {
		return paper.Metadata{}, false, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to read paper", err)
	}
	return md, true, nil
}

// AllPapers returns a point-in-time snapshot of every paper record,
// ordered by document ID. The dedup batch scan runs over this copy.
func (s *MetadataStore) AllPapers(ctx context.Context) ([]paper.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, title, authors, abstract, year, doi, arxiv_id,
		       corpus_id, citation_count, open_access, source_name
		FROM papers ORDER BY document_id`)
	if err != nil {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to list papers", err)
	}
	defer func() { _ = rows.Close() }()

	papers := []paper.Metadata{}
	for rows.Next() {
		md, err := scanPaper(rows)
		if err != nil {
			return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to scan paper", err)
		}
		papers = append(papers, md)
	}
	if err := rows.Err(); err != nil {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to iterate papers", err)
	}
	return papers, nil
}

// DeletePaper removes a paper and its chunks.
func (s *MetadataStore) DeletePaper(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to begin transaction", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE document_id = ?`, documentID); err != nil {
		_ = tx.Rollback()
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to delete paper", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		_ = tx.Rollback()
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to delete chunks", err)
	}
	if err := tx.Commit(); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to commit delete", err)
	}
	return nil
}

// DeleteChunks removes all chunk rows for a document, leaving the paper
// record in place.
func (s *MetadataStore) DeleteChunks(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to delete chunks", err)
	}
	return nil
}

// UpsertChunks stores a document's chunks in one transaction.
func (s *MetadataStore) UpsertChunks(ctx context.Context, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to begin transaction", err)
	}
	for _, c := range chunks {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO chunks
			(chunk_id, document_id, chunk_index, text, start_offset, end_offset)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID(), c.DocumentID, c.Index, c.Text, c.StartOffset, c.EndOffset)
		if err != nil {
			_ = tx.Rollback()
			return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to upsert chunk", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to commit chunks", err)
	}
	return nil
}

// GetChunk returns one chunk by its ID.
func (s *MetadataStore) GetChunk(ctx context.Context, chunkID string) (chunk.Chunk, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return chunk.Chunk{}, false, ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	var c chunk.Chunk
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, chunk_index, text, start_offset, end_offset
		FROM chunks WHERE chunk_id = ?`, chunkID)
	err := row.Scan(&c.DocumentID, &c.Index, &c.Text, &c.StartOffset, &c.EndOffset)
	if err == sql.ErrNoRows {
		return chunk.Chunk{}, false, nil
	}
	if err != nil {
		return chunk.Chunk{}, false, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to read chunk", err)
	}
	return c, true, nil
}

// ChunksByDocument returns a document's chunks in index order.
func (s *MetadataStore) ChunksByDocument(ctx context.Context, documentID string) ([]chunk.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, chunk_index, text, start_offset, end_offset
		FROM chunks WHERE document_id = ? ORDER BY chunk_index`, documentID)
	if err != nil {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to list chunks", err)
	}
	defer func() { _ = rows.Close() }()

	chunks := []chunk.Chunk{}
	for rows.Next() {
		var c chunk.Chunk
		if err := rows.Scan(&c.DocumentID, &c.Index, &c.Text, &c.StartOffset, &c.EndOffset); err != nil {
			return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to scan chunk", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to iterate chunks", err)
	}
	return chunks, nil
}

// PaperCount returns the number of indexed papers.
func (s *MetadataStore) PaperCount(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM papers`)
}

// ChunkCount returns the number of stored chunks.
func (s *MetadataStore) ChunkCount(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM chunks`)
}

func (s *MetadataStore) count(ctx context.Context, query string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ragerr.New(ragerr.ErrCodeStoreFailed, "metadata store is closed", nil)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, ragerr.New(ragerr.ErrCodeStoreFailed, "failed to count rows", err)
	}
	return n, nil
}

// Close shuts the database down. Safe to call twice.
func (s *MetadataStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (paper.Metadata, error) {
	var md paper.Metadata
	var authorsJSON string
	var openAccess int

	err := row.Scan(&md.DocumentID, &md.Title, &authorsJSON, &md.Abstract,
		&md.Year, &md.ExternalIDs.DOI, &md.ExternalIDs.ArxivID,
		&md.ExternalIDs.CorpusID, &md.CitationCount, &openAccess, &md.SourceName)
	if err != nil {
		return paper.Metadata{}, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &md.Authors); err != nil {
		return paper.Metadata{}, err
	}
	md.HasOpenAccessPDF = openAccess != 0
	return md, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
