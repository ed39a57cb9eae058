package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/paperrag/paperrag/internal/output"
)

// dedupOptions holds CLI flags for dedup.
type dedupOptions struct {
	versions bool
	format   string
}

func newDedupCmd() *cobra.Command {
	var opts dedupOptions

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Find duplicate papers in the corpus",
		Long: `Scan the corpus for records that are the same paper: shared DOI,
shared arXiv ID, or near-identical title and authors.

With --versions, instead report arXiv papers present under more than
one version.

Examples:
  paperrag dedup
  paperrag dedup --versions
  paperrag dedup --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDedup(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.versions, "versions", false, "Report arXiv multi-version papers instead of duplicates")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runDedup(ctx context.Context, cmd *cobra.Command, opts dedupOptions) error {
	out := output.New(cmd.OutOrStdout())

	a, err := openApp(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if opts.versions {
		groups, err := a.pipe.VersionGroups(ctx)
		if err != nil {
			return err
		}
		if opts.format == "json" {
			return out.JSON(groups)
		}
		out.VersionGroups(groups)
		return nil
	}

	groups, err := a.pipe.FindDuplicates(ctx)
	if err != nil {
		return err
	}
	if opts.format == "json" {
		return out.JSON(groups)
	}
	out.DuplicateGroups(groups)
	return nil
}
