// Package output renders CLI results with optional color. Styling is
// applied only when writing to an interactive terminal; pipes, files and
// CI environments get plain text.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/paperrag/paperrag/internal/dedup"
	"github.com/paperrag/paperrag/internal/pipeline"
)

const snippetLength = 200

// Printer writes formatted command output.
type Printer struct {
	out    io.Writer
	styles Styles
}

// Option modifies a Printer.
type Option func(*Printer)

// WithNoColor disables all styling regardless of terminal detection.
func WithNoColor() Option {
	return func(p *Printer) {
		p.styles = NoColorStyles()
	}
}

// New creates a Printer for the given writer. Color is enabled only when
// the writer is a TTY, NO_COLOR is unset and no CI environment is detected.
func New(out io.Writer, opts ...Option) *Printer {
	noColor := !IsTTY(out) || DetectNoColor() || DetectCI()
	p := &Printer{
		out:    out,
		styles: GetStyles(noColor),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SearchResults renders ranked passages for a query.
func (p *Printer) SearchResults(query string, results []pipeline.SearchResult) {
	if len(results) == 0 {
		p.printf("%s\n", p.styles.Dim.Render("No results for "+quoted(query)))
		return
	}

	p.printf("%s\n\n", p.styles.Header.Render(fmt.Sprintf("%d results for %s", len(results), quoted(query))))
	for _, r := range results {
		rank := p.styles.Dim.Render(fmt.Sprintf("%2d.", r.Rank))
		title := p.styles.Title.Render(r.Title)
		score := p.styles.Score.Render(fmt.Sprintf("%.3f", r.FinalScore))
		p.printf("%s %s  %s\n", rank, title, score)
		p.printf("    %s\n", p.styles.Label.Render(fmt.Sprintf(
			"chunk=%s semantic=%.3f keyword=%.3f quality=%.3f",
			r.ChunkID, r.SemanticScore, r.KeywordScore, r.QualityScore)))
		p.printf("    %s\n\n", snippet(r.Text))
	}
}

// DuplicateGroups renders the outcome of a duplicate scan.
func (p *Printer) DuplicateGroups(groups []dedup.DuplicateGroup) {
	if len(groups) == 0 {
		p.printf("%s\n", p.styles.Success.Render("No duplicates found"))
		return
	}

	p.printf("%s\n\n", p.styles.Header.Render(fmt.Sprintf("%d duplicate groups", len(groups))))
	for i, g := range groups {
		p.printf("%s %s\n", p.styles.Dim.Render(fmt.Sprintf("%2d.", i+1)),
			p.styles.Warning.Render(string(g.Reason)))
		for _, member := range g.Members {
			p.printf("    %s\n", member)
		}
		p.printf("\n")
	}
}

// VersionGroups renders arXiv papers present under more than one version.
func (p *Printer) VersionGroups(groups []dedup.VersionGroup) {
	if len(groups) == 0 {
		p.printf("%s\n", p.styles.Success.Render("No multi-version papers found"))
		return
	}

	p.printf("%s\n\n", p.styles.Header.Render(fmt.Sprintf("%d papers with multiple versions", len(groups))))
	for _, g := range groups {
		p.printf("%s\n", p.styles.Title.Render(g.BaseID))
		for _, v := range g.Versions {
			p.printf("    %s  %s\n", v.ArxivID, p.styles.Label.Render(v.Title))
		}
		p.printf("\n")
	}
}

// Variants renders the expansions generated for a query.
func (p *Printer) Variants(original string, variants []string) {
	p.printf("%s\n", p.styles.Header.Render("Query: "+original))
	for i, v := range variants {
		p.printf("%s %s\n", p.styles.Dim.Render(fmt.Sprintf("%2d.", i+1)), v)
	}
}

// Stats renders index counts.
func (p *Printer) Stats(stats pipeline.Stats) {
	p.printf("%s\n", p.styles.Header.Render("Index status"))
	p.printf("  %s %d\n", p.styles.Label.Render("papers: "), stats.Papers)
	p.printf("  %s %d\n", p.styles.Label.Render("chunks: "), stats.Chunks)
	p.printf("  %s %d\n", p.styles.Label.Render("vectors:"), stats.Vectors)
}

// JSON writes v as indented JSON, bypassing all styling.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success prints a success message.
func (p *Printer) Success(msg string) {
	p.printf("%s\n", p.styles.Success.Render(msg))
}

// Successf prints a formatted success message.
func (p *Printer) Successf(format string, args ...any) {
	p.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (p *Printer) Warning(msg string) {
	p.printf("%s\n", p.styles.Warning.Render(msg))
}

// Error prints an error message.
func (p *Printer) Error(msg string) {
	p.printf("%s\n", p.styles.Error.Render(msg))
}

// Errors from writing console output are intentionally ignored.
func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= snippetLength {
		return text
	}
	cut := text[:snippetLength]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

func quoted(q string) string {
	return "\"" + q + "\""
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
