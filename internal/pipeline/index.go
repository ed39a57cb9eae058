package pipeline

import (
	"context"

	ragerr "github.com/paperrag/paperrag/internal/errors"
	"github.com/paperrag/paperrag/internal/paper"
)

// IndexPaper ingests one paper: splits its text into chunks, embeds
// them and writes metadata, chunk text, vectors and the lexical index.
// Re-indexing an existing document replaces it. Returns the number of
// chunks indexed. Papers with no usable text fall back to the abstract,
// so a metadata-only record is still retrievable.
func (p *Pipeline) IndexPaper(ctx context.Context, md paper.Metadata, text string) (int, error) {
	if md.DocumentID == "" {
		return 0, ragerr.New(ragerr.ErrCodeInvalidInput, "paper has no document ID", nil)
	}
	if text == "" {
		text = md.Abstract
	}

	// Clear previous chunks so a shrinking document leaves no strays.
	if err := p.removeChunks(ctx, md.DocumentID); err != nil {
		return 0, err
	}

	if err := p.meta.UpsertPaper(ctx, md); err != nil {
		return 0, err
	}

	chunks := p.splitter.Split(text, md.DocumentID)
	if len(chunks) == 0 {
		p.logger.Warn("paper_indexed_without_text", "document_id", md.DocumentID)
		return 0, nil
	}

	if err := p.meta.UpsertChunks(ctx, chunks); err != nil {
		return 0, err
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID()
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if err := p.vectors.Add(ctx, ids, vectors); err != nil {
		return 0, err
	}
	if err := p.lexical.Index(ctx, chunks); err != nil {
		return 0, err
	}

	p.logger.Info("paper_indexed",
		"document_id", md.DocumentID,
		"chunks", len(chunks))
	return len(chunks), nil
}

// RemovePaper drops a paper and all its derived index entries.
func (p *Pipeline) RemovePaper(ctx context.Context, documentID string) error {
	if err := p.removeChunks(ctx, documentID); err != nil {
		return err
	}
	return p.meta.DeletePaper(ctx, documentID)
}

// removeChunks clears a document's entries from the vector and lexical
// indexes and drops its chunk rows, so a reindex never leaves strays.
func (p *Pipeline) removeChunks(ctx context.Context, documentID string) error {
	existing, err := p.meta.ChunksByDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	ids := make([]string, len(existing))
	for i, c := range existing {
		ids[i] = c.ID()
	}
	if err := p.vectors.Delete(ctx, ids); err != nil {
		return err
	}
	if err := p.lexical.Delete(ctx, ids); err != nil {
		return err
	}
	return p.meta.DeleteChunks(ctx, documentID)
}
