package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/paperrag/paperrag/internal/output"
)

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show corpus and index status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, format string) error {
	out := output.New(cmd.OutOrStdout())

	a, err := openApp(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stats, err := a.pipe.Stats(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		return out.JSON(stats)
	}
	out.Stats(stats)
	return nil
}
