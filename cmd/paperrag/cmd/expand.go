package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperrag/paperrag/internal/output"
)

func newExpandCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "expand <query>",
		Short: "Show how a query is expanded before retrieval",
		Long: `Show the variants a query is expanded into before retrieval:
acronym expansion, plural and singular forms, and synonyms of key terms.

Examples:
  paperrag expand "what is NLP"
  paperrag expand "transformer models" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd.Context(), cmd, strings.Join(args, " "), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runExpand(ctx context.Context, cmd *cobra.Command, query, format string) error {
	out := output.New(cmd.OutOrStdout())

	a, err := openApp(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	variants, err := a.pipe.ExpandQuery(ctx, query)
	if err != nil {
		return err
	}

	if format == "json" {
		return out.JSON(variants)
	}
	out.Variants(query, variants)
	return nil
}
