package chunk

import (
	"regexp"
	"strings"
)

// sectionHeaderPattern matches common research-paper section headers on
// their own line (Abstract, Introduction, Methods, Results, ...).
var sectionHeaderPattern = regexp.MustCompile(
	`(?im)^\s*(?:abstract|introduction|background|related work|methods?|methodology|results?|discussion|conclusion|references?)\s*$`)

// paragraphSeparator splits text into paragraphs on blank lines.
var paragraphSeparator = regexp.MustCompile(`\n\s*\n`)

// SmartSplitter chunks text by structural section headers, falling back to
// paragraph grouping and finally to fixed-size splitting. A strategy is
// accepted only when it yields at least three segments; papers without
// recognizable structure degrade gracefully to the fixed algorithm.
type SmartSplitter struct {
	opts  Options
	fixed *FixedSplitter
}

// Verify interface implementation at compile time
var _ Splitter = (*SmartSplitter)(nil)

// NewSmartSplitter creates a smart splitter with the given options.
func NewSmartSplitter(opts Options) (*SmartSplitter, error) {
	fixed, err := NewFixedSplitter(opts)
	if err != nil {
		return nil, err
	}
	return &SmartSplitter{opts: fixed.opts, fixed: fixed}, nil
}

// Split chunks text using the best available strategy.
func (s *SmartSplitter) Split(text, documentID string) []Chunk {
	cleaned := normalizeLineEndings(text)
	if strings.TrimSpace(cleaned) == "" {
		return []Chunk{}
	}

	if chunks := s.splitBySections(cleaned, documentID); len(chunks) >= minSmartSegments {
		return chunks
	}

	if chunks := s.splitByParagraphs(cleaned, documentID); len(chunks) >= minSmartSegments {
		return chunks
	}

	return s.fixed.Split(cleaned, documentID)
}

// splitBySections splits on recognized section headers, then runs the fixed
// splitter within each oversized section. Chunk indices are renumbered to
// stay dense across the whole document.
func (s *SmartSplitter) splitBySections(text, documentID string) []Chunk {
	sections := sectionHeaderPattern.Split(text, -1)
	if len(sections) < 2 {
		return nil
	}

	var chunks []Chunk
	for _, section := range sections {
		if strings.TrimSpace(section) == "" {
			continue
		}
		for _, c := range s.fixed.Split(section, documentID) {
			c.Index = uint32(len(chunks))
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// splitByParagraphs groups paragraphs into chunks of at most MaxSize
// characters, hard-splitting any single paragraph that exceeds the limit.
func (s *SmartSplitter) splitByParagraphs(text, documentID string) []Chunk {
	paragraphs := paragraphSeparator.Split(text, -1)

	var chunks []Chunk
	var current strings.Builder

	flush := func() {
		content := strings.TrimSpace(current.String())
		current.Reset()
		if content == "" {
			return
		}
		if len([]rune(content)) > s.opts.MaxSize {
			// Oversized accumulation: hard-split with the fixed algorithm.
			for _, c := range s.fixed.Split(content, documentID) {
				c.Index = uint32(len(chunks))
				chunks = append(chunks, c)
			}
			return
		}
		chunks = append(chunks, Chunk{
			DocumentID: documentID,
			Index:      uint32(len(chunks)),
			Text:       content,
		})
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(para) > s.opts.MaxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}
