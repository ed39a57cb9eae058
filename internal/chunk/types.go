// Package chunk splits paper full text into bounded, overlapping segments
// suitable for independent retrieval. Chunking is pure: the same text always
// produces the same chunks, and no chunker holds mutable state.
package chunk

import "fmt"

// Chunk size defaults, tuned for abstract-plus-body research text.
const (
	// DefaultMaxSize is the maximum characters per chunk.
	DefaultMaxSize = 1000

	// DefaultOverlap is the character overlap between consecutive chunks.
	DefaultOverlap = 200

	// minSmartSegments is the minimum segment count for a smart strategy
	// to be considered successful before falling back to the next one.
	minSmartSegments = 3
)

// Chunk is a bounded contiguous slice of a document's text, the atomic unit
// retrieved and scored. (DocumentID, Index) is unique; Index is a dense
// 0-based sequence per document.
type Chunk struct {
	// DocumentID identifies the paper this chunk belongs to.
	DocumentID string

	// Index is the position of this chunk within the document (0-based, dense).
	Index uint32

	// Text is the chunk content, trimmed of surrounding whitespace.
	Text string

	// StartOffset is the rune offset of the chunk start in the cleaned text.
	StartOffset int

	// EndOffset is the rune offset one past the chunk end in the cleaned text.
	EndOffset int
}

// ID returns the chunk's globally unique identifier "<document_id>:<index>".
func (c *Chunk) ID() string {
	return fmt.Sprintf("%s:%d", c.DocumentID, c.Index)
}

// Options configures chunking behavior.
type Options struct {
	// MaxSize is the maximum characters per chunk. Must be positive.
	MaxSize int

	// Overlap is the character overlap between chunks. Must be non-negative
	// and strictly less than MaxSize.
	Overlap int
}

// DefaultOptions returns the default chunking options.
func DefaultOptions() Options {
	return Options{
		MaxSize: DefaultMaxSize,
		Overlap: DefaultOverlap,
	}
}

// Validate checks option invariants.
func (o Options) Validate() error {
	if o.MaxSize <= 0 {
		return fmt.Errorf("max size must be positive, got %d", o.MaxSize)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("overlap must be non-negative, got %d", o.Overlap)
	}
	if o.Overlap >= o.MaxSize {
		return fmt.Errorf("overlap %d must be less than max size %d", o.Overlap, o.MaxSize)
	}
	return nil
}
