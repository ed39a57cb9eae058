// Package paper defines the bibliographic metadata model shared by the
// quality scorer, the deduplicator and the metadata store.
package paper

// ExternalIDs holds identifiers assigned by external catalogs.
// Empty strings mean the identifier is unknown.
type ExternalIDs struct {
	// DOI is the Digital Object Identifier, e.g. "10.48550/arXiv.1706.03762".
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier including version, e.g. "1706.03762v5".
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// CorpusID is the Semantic Scholar corpus identifier.
	CorpusID string `json:"corpus_id,omitempty" yaml:"corpus_id,omitempty"`
}

// Metadata is the bibliographic record for one paper. It is owned by the
// metadata store and read-only to the retrieval core; zero values stand for
// missing fields and are never an error.
type Metadata struct {
	// DocumentID identifies the paper within this corpus.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the ordered author list.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Year is the publication year; 0 means unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// ExternalIDs are catalog identifiers used for exact-match dedup.
	ExternalIDs ExternalIDs `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`

	// CitationCount is the known citation count; 0 means unknown or zero.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// HasOpenAccessPDF reports whether a full-text PDF link is known.
	HasOpenAccessPDF bool `json:"has_open_access_pdf,omitempty" yaml:"has_open_access_pdf,omitempty"`

	// SourceName names the catalog the record came from, e.g. "arxiv".
	SourceName string `json:"source_name,omitempty" yaml:"source_name,omitempty"`
}
