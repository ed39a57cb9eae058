package dedup

import "github.com/paperrag/paperrag/internal/paper"

// MergeMetadata collapses a duplicate group into one record. Per field it
// keeps the longest non-empty string, the maximum year, the highest arXiv
// version, the largest citation count, and the longest author list, so the
// winner is deterministic regardless of member order beyond ties, which go
// to the earliest member. An empty group yields a zero record.
func MergeMetadata(group []paper.Metadata) paper.Metadata {
	if len(group) == 0 {
		return paper.Metadata{}
	}

	merged := paper.Metadata{DocumentID: group[0].DocumentID}
	for _, md := range group {
		merged.Title = longest(merged.Title, md.Title)
		merged.Abstract = longest(merged.Abstract, md.Abstract)
		merged.SourceName = longest(merged.SourceName, md.SourceName)
		merged.ExternalIDs.DOI = longest(merged.ExternalIDs.DOI, md.ExternalIDs.DOI)
		merged.ExternalIDs.CorpusID = longest(merged.ExternalIDs.CorpusID, md.ExternalIDs.CorpusID)

		if len(md.Authors) > len(merged.Authors) {
			merged.Authors = md.Authors
		}
		if md.Year > merged.Year {
			merged.Year = md.Year
		}
		if md.CitationCount > merged.CitationCount {
			merged.CitationCount = md.CitationCount
		}
		if md.HasOpenAccessPDF {
			merged.HasOpenAccessPDF = true
		}

		if id := md.ExternalIDs.ArxivID; id != "" {
			cur := merged.ExternalIDs.ArxivID
			if cur == "" || ArxivVersion(id) > ArxivVersion(cur) {
				merged.ExternalIDs.ArxivID = id
			}
		}
	}
	return merged
}

func longest(cur, candidate string) string {
	if len(candidate) > len(cur) {
		return candidate
	}
	return cur
}
