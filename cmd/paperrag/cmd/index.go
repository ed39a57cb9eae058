package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/paperrag/paperrag/internal/output"
	"github.com/paperrag/paperrag/internal/paper"
)

// indexOptions holds CLI flags for index.
type indexOptions struct {
	offline bool
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index <file...>",
		Short: "Index paper text files into the corpus",
		Long: `Index plain-text paper files into the corpus.

Each file is split into passages, embedded and added to the vector,
lexical and metadata stores. Metadata is read from a YAML sidecar named
<file>.yaml when present; otherwise the file name becomes the paper ID.

Sidecar example (paper.txt.yaml):
  document_id: vaswani2017
  title: Attention Is All You Need
  authors: [Vaswani, Shazeer]
  year: 2017
  citation_count: 90000

Examples:
  paperrag index papers/attention.txt
  paperrag index papers/*.txt --offline`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Use static embeddings (skip Ollama)")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, files []string, opts indexOptions) error {
	out := output.New(cmd.OutOrStdout())

	a, err := openApp(ctx, configPath, opts.offline)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			out.Error("failed to persist indexes: " + cerr.Error())
		}
	}()

	indexed := 0
	chunks := 0
	for _, file := range files {
		md, text, err := loadPaperFile(file)
		if err != nil {
			out.Error(fmt.Sprintf("%s: %v", file, err))
			continue
		}

		n, err := a.pipe.IndexPaper(ctx, md, text)
		if err != nil {
			out.Error(fmt.Sprintf("%s: %v", file, err))
			continue
		}
		a.markDirty()
		indexed++
		chunks += n
	}

	if indexed == 0 {
		return fmt.Errorf("no files indexed")
	}
	out.Successf("Indexed %d papers (%d passages)", indexed, chunks)
	return nil
}

// loadPaperFile reads a paper text file and its optional YAML sidecar.
func loadPaperFile(path string) (paper.Metadata, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return paper.Metadata{}, "", err
	}

	var md paper.Metadata
	sidecar, err := os.ReadFile(path + ".yaml")
	if err == nil {
		if err := yaml.Unmarshal(sidecar, &md); err != nil {
			return paper.Metadata{}, "", fmt.Errorf("sidecar: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return paper.Metadata{}, "", err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if md.DocumentID == "" {
		md.DocumentID = base
	}
	if md.Title == "" {
		md.Title = base
	}

	return md, string(data), nil
}
