package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paperrag/paperrag/internal/mcp"
)

// serveOptions holds CLI flags for serve.
type serveOptions struct {
	transport string
	offline   bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server so AI assistants can search the corpus.

The server exposes the search_papers, expand_query, find_duplicates and
index_status tools over stdio. It runs until the client disconnects or
the process receives an interrupt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.transport, "transport", "t", "", "Transport: stdio (default from config)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use static embeddings (skip Ollama)")

	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, configPath, opts.offline)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			slog.Error("failed to close stores", slog.String("error", cerr.Error()))
		}
	}()

	server, err := mcp.NewServer(a.pipe, a.embedder, a.cfg)
	if err != nil {
		return err
	}

	transport := opts.transport
	if transport == "" {
		transport = a.cfg.Server.Transport
	}

	return server.Serve(ctx, transport)
}
