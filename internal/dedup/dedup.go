// Package dedup groups corpus documents that represent the same underlying
// paper. Matching runs in tiers: exact DOI, then version-stripped arXiv ID,
// then fuzzy title similarity backed by author similarity. Missing
// identifiers simply skip a tier; detection never fails on sparse metadata.
package dedup

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/paperrag/paperrag/internal/paper"
)

// Reason names the first criterion that matched when a group was formed.
type Reason string

const (
	ReasonExactDOI         Reason = "exact_doi"
	ReasonExactArxivBaseID Reason = "exact_arxiv_base_id"
	ReasonFuzzyTitleAuthor Reason = "fuzzy_title_author"
)

// Default similarity thresholds for the fuzzy tier.
const (
	DefaultTitleThreshold  = 0.85
	DefaultAuthorThreshold = 0.70
)

// DuplicateGroup is a set of documents believed to be the same paper.
// Groups are recomputed per call; GroupID has no identity across runs.
type DuplicateGroup struct {
	GroupID string   `json:"group_id"`
	Members []string `json:"members"`
	Reason  Reason   `json:"reason"`
}

// Options tunes the fuzzy matching tier.
type Options struct {
	// TitleThreshold is the minimum title similarity for a fuzzy match.
	TitleThreshold float64

	// AuthorThreshold is the minimum author-string similarity required
	// once titles match.
	AuthorThreshold float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		TitleThreshold:  DefaultTitleThreshold,
		AuthorThreshold: DefaultAuthorThreshold,
	}
}

// Detector finds duplicate groups in a corpus snapshot.
type Detector struct {
	opts   Options
	logger *slog.Logger
}

// NewDetector builds a Detector, filling non-positive thresholds from
// DefaultOptions.
func NewDetector(opts Options) *Detector {
	if opts.TitleThreshold <= 0 {
		opts.TitleThreshold = DefaultTitleThreshold
	}
	if opts.AuthorThreshold <= 0 {
		opts.AuthorThreshold = DefaultAuthorThreshold
	}
	return &Detector{opts: opts, logger: slog.Default()}
}

// FindDuplicates scans the snapshot pairwise and returns every group with
// at least two members. The scan is a single pass with a claimed set: once
// a document joins a group it is never considered again, so groups are
// disjoint. Each group's Reason records the criterion that matched its
// first pair. O(n^2) string comparisons over the corpus.
func (d *Detector) FindDuplicates(corpus []paper.Metadata) []DuplicateGroup {
	groups := []DuplicateGroup{}
	claimed := make(map[int]struct{}, len(corpus))

	for i, a := range corpus {
		if _, ok := claimed[i]; ok {
			continue
		}

		members := []string{a.DocumentID}
		var reason Reason

		for j := i + 1; j < len(corpus); j++ {
			if _, ok := claimed[j]; ok {
				continue
			}
			r, ok := d.match(a, corpus[j])
			if !ok {
				continue
			}
			members = append(members, corpus[j].DocumentID)
			claimed[j] = struct{}{}
			if reason == "" {
				reason = r
			}
		}

		if len(members) < 2 {
			continue
		}
		claimed[i] = struct{}{}
		groups = append(groups, DuplicateGroup{
			GroupID: uuid.NewString(),
			Members: members,
			Reason:  reason,
		})
	}

	d.logger.Info("dedup_scan_complete",
		"corpus_size", len(corpus),
		"groups", len(groups))
	return groups
}

// match reports whether a and b are duplicates and under which criterion.
// Tiers are checked in order; the first applicable one decides.
func (d *Detector) match(a, b paper.Metadata) (Reason, bool) {
	if a.ExternalIDs.DOI != "" && b.ExternalIDs.DOI != "" {
		if strings.EqualFold(a.ExternalIDs.DOI, b.ExternalIDs.DOI) {
			return ReasonExactDOI, true
		}
	}

	if a.ExternalIDs.ArxivID != "" && b.ExternalIDs.ArxivID != "" {
		if BaseArxivID(a.ExternalIDs.ArxivID) == BaseArxivID(b.ExternalIDs.ArxivID) {
			return ReasonExactArxivBaseID, true
		}
	}

	if Similarity(a.Title, b.Title) >= d.opts.TitleThreshold {
		as := strings.Join(a.Authors, ", ")
		bs := strings.Join(b.Authors, ", ")
		if Similarity(as, bs) >= d.opts.AuthorThreshold {
			return ReasonFuzzyTitleAuthor, true
		}
	}

	return "", false
}

// BaseArxivID strips the version suffix from an arXiv identifier:
// everything before the first 'v'. "1706.03762v5" becomes "1706.03762".
func BaseArxivID(id string) string {
	if i := strings.IndexByte(id, 'v'); i >= 0 {
		return id[:i]
	}
	return id
}

// ArxivVersion extracts the numeric version from an arXiv identifier, or
// 0 when the identifier carries no version suffix.
func ArxivVersion(id string) int {
	i := strings.IndexByte(id, 'v')
	if i < 0 || i+1 >= len(id) {
		return 0
	}
	v := 0
	for _, r := range id[i+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		v = v*10 + int(r-'0')
	}
	return v
}
