package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperrag/paperrag/internal/config"
	"github.com/paperrag/paperrag/internal/embed"
	"github.com/paperrag/paperrag/internal/pipeline"
	"github.com/paperrag/paperrag/pkg/version"
)

// serverName identifies this server to MCP clients.
const serverName = "paperrag"

// Server bridges AI clients with the paper retrieval pipeline.
type Server struct {
	mcp      *mcp.Server
	pipe     *pipeline.Pipeline
	embedder embed.Embedder
	config   *config.Config
	logger   *slog.Logger
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// SearchInput defines the input schema for the search_papers tool.
type SearchInput struct {
	Query          string `json:"query" jsonschema:"the research question or topic to search for"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of passages, default 10"`
	Mode           string `json:"mode,omitempty" jsonschema:"retrieval mode: hybrid, semantic, or lexical"`
	MaxPerDocument int    `json:"max_per_document,omitempty" jsonschema:"maximum passages per paper, default 2"`
}

// SearchOutput defines the output schema for the search_papers tool.
type SearchOutput struct {
	Results []pipeline.SearchResult `json:"results" jsonschema:"ranked passages with scores"`
}

// ExpandInput defines the input schema for the expand_query tool.
type ExpandInput struct {
	Query string `json:"query" jsonschema:"the query to expand"`
}

// ExpandOutput defines the output schema for the expand_query tool.
type ExpandOutput struct {
	Variants []string `json:"variants" jsonschema:"query variants, the normalized original first"`
}

// FindDuplicatesInput defines the input schema for the find_duplicates tool (no parameters).
type FindDuplicatesInput struct{}

// DuplicateGroupOutput is one group of papers judged to be the same work.
type DuplicateGroupOutput struct {
	GroupID string   `json:"group_id"`
	Members []string `json:"members"`
	Reason  string   `json:"reason"`
}

// FindDuplicatesOutput defines the output schema for the find_duplicates tool.
type FindDuplicatesOutput struct {
	Groups []DuplicateGroupOutput `json:"groups" jsonschema:"duplicate groups found in the corpus"`
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// EmbeddingInfo reports the active embedder state. Clients can use it to
// adjust their retrieval strategy when the static fallback is active.
type EmbeddingInfo struct {
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Dimensions       int    `json:"dimensions"`
	Status           string `json:"status"`
	IsFallbackActive bool   `json:"is_fallback_active"`
}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	Papers     int           `json:"papers"`
	Chunks     int           `json:"chunks"`
	Vectors    int           `json:"vectors"`
	Embeddings EmbeddingInfo `json:"embeddings"`
}

// NewServer creates a new MCP server wrapping the retrieval pipeline.
// The embedder is used for capability signaling only.
func NewServer(pipe *pipeline.Pipeline, embedder embed.Embedder, cfg *config.Config) (*Server, error) {
	if pipe == nil {
		return nil, errors.New("pipeline is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		pipe:     pipe,
		embedder: embedder,
		config:   cfg,
		logger:   slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "search_papers",
			Description: "Search the indexed paper corpus for passages relevant to a research question. Combines semantic and keyword retrieval, ranks by relevance and paper quality, and limits passages per paper.",
		},
		{
			Name:        "expand_query",
			Description: "Expand a research query into alternative phrasings. Expands common acronyms and adds synonym and plural variants. Useful for understanding how a query will be interpreted.",
		},
		{
			Name:        "find_duplicates",
			Description: "Scan the corpus for papers that are the same work under different records: shared DOI, shared arXiv ID, or near-identical title and authors.",
		},
		{
			Name:        "index_status",
			Description: "Report corpus size and which embedder is active. Use before searching to verify the index is populated.",
		},
	}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	for _, info := range s.ListTools() {
		s.logger.Debug("registering tool", slog.String("name", info.Name))
	}

	tools := s.ListTools()
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.searchHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.expandHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.findDuplicatesHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[3].Name, Description: tools[3].Description}, s.indexStatusHandler)

	s.logger.Info("mcp tools registered", slog.Int("count", len(tools)))
}

// searchHandler is the MCP SDK handler for the search_papers tool.
func (s *Server) searchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query parameter is required")
	}

	start := time.Now()
	requestID := generateRequestID()
	s.logger.Info("search_papers started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("limit", input.Limit))

	opts := pipeline.SearchOptions{
		TopK:           clampLimit(input.Limit, 10, 1, 50),
		MaxPerDocument: input.MaxPerDocument,
		Mode:           input.Mode,
	}

	results, err := s.pipe.Search(ctx, input.Query, opts)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("search_papers failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, SearchOutput{}, MapError(err)
	}

	s.logger.Info("search_papers completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", len(results)))

	return nil, SearchOutput{Results: results}, nil
}

// expandHandler is the MCP SDK handler for the expand_query tool.
func (s *Server) expandHandler(ctx context.Context, _ *mcp.CallToolRequest, input ExpandInput) (
	*mcp.CallToolResult,
	ExpandOutput,
	error,
) {
	if input.Query == "" {
		return nil, ExpandOutput{}, NewInvalidParamsError("query parameter is required")
	}

	variants, err := s.pipe.ExpandQuery(ctx, input.Query)
	if err != nil {
		return nil, ExpandOutput{}, MapError(err)
	}
	return nil, ExpandOutput{Variants: variants}, nil
}

// findDuplicatesHandler is the MCP SDK handler for the find_duplicates tool.
func (s *Server) findDuplicatesHandler(ctx context.Context, _ *mcp.CallToolRequest, _ FindDuplicatesInput) (
	*mcp.CallToolResult,
	FindDuplicatesOutput,
	error,
) {
	start := time.Now()
	requestID := generateRequestID()
	s.logger.Info("find_duplicates started", slog.String("request_id", requestID))

	groups, err := s.pipe.FindDuplicates(ctx)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("find_duplicates failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, FindDuplicatesOutput{}, MapError(err)
	}

	out := FindDuplicatesOutput{Groups: make([]DuplicateGroupOutput, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, DuplicateGroupOutput{
			GroupID: g.GroupID,
			Members: g.Members,
			Reason:  string(g.Reason),
		})
	}

	s.logger.Info("find_duplicates completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("group_count", len(groups)))

	return nil, out, nil
}

// indexStatusHandler is the MCP SDK handler for the index_status tool.
func (s *Server) indexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	*IndexStatusOutput,
	error,
) {
	stats, err := s.pipe.Stats(ctx)
	if err != nil {
		return nil, nil, MapError(err)
	}

	info := EmbeddingInfo{
		Provider: s.config.Embeddings.Provider,
		Model:    s.config.Embeddings.Model,
		Status:   "unavailable",
	}
	if s.embedder != nil {
		info.Model = s.embedder.ModelName()
		info.Dimensions = s.embedder.Dimensions()
		info.IsFallbackActive = info.Model == "static-hash"
		if s.embedder.Available(ctx) {
			info.Status = "ready"
		}
	}

	return nil, &IndexStatusOutput{
		Papers:     stats.Papers,
		Chunks:     stats.Chunks,
		Vectors:    stats.Vectors,
		Embeddings: info,
	}, nil
}

// Serve starts the server on the specified transport. It blocks until the
// context is canceled or the client disconnects.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting mcp server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("mcp server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// clampLimit applies the default for non-positive values and clamps to
// the allowed range.
func clampLimit(v, def, min, max int) int {
	if v <= 0 {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
