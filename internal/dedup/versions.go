package dedup

import (
	"sort"

	"github.com/paperrag/paperrag/internal/paper"
)

// VersionEntry is one arXiv submission within a multi-version group.
type VersionEntry struct {
	DocumentID string `json:"document_id"`
	ArxivID    string `json:"arxiv_id"`
	Title      string `json:"title"`
}

// VersionGroup collects every version of one arXiv paper in the corpus.
type VersionGroup struct {
	BaseID   string         `json:"base_id"`
	Versions []VersionEntry `json:"versions"`
}

// VersionGroups reports arXiv papers the corpus holds under more than one
// version. Groups are keyed by the version-stripped base ID; entries within
// a group are ordered by version, groups by base ID.
func VersionGroups(corpus []paper.Metadata) []VersionGroup {
	byBase := make(map[string][]VersionEntry)
	for _, md := range corpus {
		id := md.ExternalIDs.ArxivID
		if id == "" {
			continue
		}
		base := BaseArxivID(id)
		byBase[base] = append(byBase[base], VersionEntry{
			DocumentID: md.DocumentID,
			ArxivID:    id,
			Title:      md.Title,
		})
	}

	groups := []VersionGroup{}
	for base, entries := range byBase {
		if len(entries) < 2 {
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return ArxivVersion(entries[i].ArxivID) < ArxivVersion(entries[j].ArxivID)
		})
		groups = append(groups, VersionGroup{BaseID: base, Versions: entries})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].BaseID < groups[j].BaseID })
	return groups
}
