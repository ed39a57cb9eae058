package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperrag/paperrag/internal/output"
	"github.com/paperrag/paperrag/internal/pipeline"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit   int
	mode    string
	maxDoc  int
	format  string
	offline bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed paper corpus",
		Long: `Search the indexed corpus for passages relevant to a question.

Hybrid mode combines semantic similarity with keyword overlap, then
re-ranks passages by paper quality and caps passages per paper.

Examples:
  paperrag search "attention mechanisms in transformers"
  paperrag search "protein folding" --mode lexical --limit 5
  paperrag search "graph neural networks" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of passages")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Retrieval mode: hybrid, semantic, lexical")
	cmd.Flags().IntVar(&opts.maxDoc, "max-per-doc", 0, "Maximum passages per paper")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use static embeddings (skip Ollama)")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	out := output.New(cmd.OutOrStdout())

	a, err := openApp(ctx, configPath, opts.offline)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	slog.Info("search_started", slog.String("query", query), slog.Int("limit", opts.limit))

	results, err := a.pipe.Search(ctx, query, pipeline.SearchOptions{
		TopK:           opts.limit,
		MaxPerDocument: opts.maxDoc,
		Mode:           opts.mode,
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		return out.JSON(results)
	}
	out.SearchResults(query, results)
	return nil
}
