package chunk

import (
	"strings"
)

// Splitter is the interface for splitting document text into chunks.
type Splitter interface {
	// Split chunks the given text for the document. Empty or whitespace-only
	// text yields an empty slice, never an error.
	Split(text, documentID string) []Chunk
}

// FixedSplitter implements greedy fixed-size chunking with sentence-boundary
// backoff and configurable overlap.
type FixedSplitter struct {
	opts Options
}

// Verify interface implementation at compile time
var _ Splitter = (*FixedSplitter)(nil)

// NewFixedSplitter creates a fixed-size splitter. Zero-value options fall
// back to defaults; invalid options return an error.
func NewFixedSplitter(opts Options) (*FixedSplitter, error) {
	if opts.MaxSize == 0 && opts.Overlap == 0 {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &FixedSplitter{opts: opts}, nil
}

// Split chunks text into segments of at most MaxSize characters.
//
// The cut point backs off to the nearest sentence-ending punctuation or line
// break, but only when that boundary lies past 50% of MaxSize; otherwise the
// hard cut is kept to avoid degenerate tiny chunks. The next chunk starts
// Overlap characters before the previous boundary, clamped to the start of
// the text.
func (s *FixedSplitter) Split(text, documentID string) []Chunk {
	cleaned := normalizeLineEndings(text)
	if strings.TrimSpace(cleaned) == "" {
		return []Chunk{}
	}

	runes := []rune(cleaned)
	var chunks []Chunk
	start := 0
	var index uint32

	for start < len(runes) {
		end := start + s.opts.MaxSize
		if end > len(runes) {
			end = len(runes)
		}

		boundary := end
		if end < len(runes) {
			if bp := lastSentenceBoundary(runes[start:end]); bp > s.opts.MaxSize/2 {
				boundary = start + bp + 1
			}
		}

		segment := string(runes[start:boundary])
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			chunks = append(chunks, Chunk{
				DocumentID:  documentID,
				Index:       index,
				Text:        trimmed,
				StartOffset: start,
				EndOffset:   boundary,
			})
			index++
		}

		if boundary >= len(runes) {
			break
		}

		next := boundary - s.opts.Overlap
		// Overlap must never stall or rewind the scan.
		if next <= start {
			next = start + 1
		}
		start = next
	}

	if chunks == nil {
		return []Chunk{}
	}
	return chunks
}

// lastSentenceBoundary returns the index of the last sentence-ending
// punctuation (followed by a space) or line break within the segment.
// Returns -1 if none is found.
func lastSentenceBoundary(segment []rune) int {
	for i := len(segment) - 1; i >= 0; i-- {
		r := segment[i]
		if r == '\n' {
			return i
		}
		if (r == '.' || r == '!' || r == '?') && i+1 < len(segment) && segment[i+1] == ' ' {
			return i
		}
	}
	return -1
}

// normalizeLineEndings converts Windows and old Mac line endings to \n.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
