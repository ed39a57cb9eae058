// Package config loads paperrag configuration from YAML with PAPERRAG_*
// environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

// Retrieval modes.
const (
	ModeHybrid   = "hybrid"
	ModeSemantic = "semantic"
	ModeLexical  = "lexical"
)

// Config is the complete paperrag configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Paths      PathsConfig      `yaml:"paths"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Server     ServerConfig     `yaml:"server"`
}

// PathsConfig locates on-disk state.
type PathsConfig struct {
	// DataDir holds the indexes and metadata database.
	// Defaults to ~/.paperrag.
	DataDir string `yaml:"data_dir"`
}

// RetrievalConfig tunes hybrid search and re-ranking.
type RetrievalConfig struct {
	// SemanticWeight and KeywordWeight blend the two score sources.
	// They are normalized by their sum at query time.
	SemanticWeight float64 `yaml:"semantic_weight"`
	KeywordWeight  float64 `yaml:"keyword_weight"`

	// TopK is how many candidates to pull from each index.
	TopK int `yaml:"top_k"`

	// DiversityWeight scales the first-seen document bonus.
	DiversityWeight float64 `yaml:"diversity_weight"`

	// MaxPerDocument caps passages per document in the final results.
	MaxPerDocument int `yaml:"max_per_document"`

	// Mode selects the retrieval strategy: hybrid, semantic or lexical.
	Mode string `yaml:"mode"`
}

// ChunkingConfig tunes document splitting.
type ChunkingConfig struct {
	MaxSize int `yaml:"max_size"`
	Overlap int `yaml:"overlap"`

	// Smart enables structure-aware splitting (sections, paragraphs)
	// before falling back to fixed windows.
	Smart bool `yaml:"smart"`
}

// DedupConfig tunes the fuzzy duplicate-matching tier.
type DedupConfig struct {
	TitleThreshold  float64 `yaml:"title_threshold"`
	AuthorThreshold float64 `yaml:"author_threshold"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is "ollama" or "static".
	Provider string `yaml:"provider"`

	Model      string `yaml:"model"`
	OllamaHost string `yaml:"ollama_host"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	CacheSize  int    `yaml:"cache_size"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport"`
	LogLevel  string `yaml:"log_level"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DataDir: defaultDataDir(),
		},
		Retrieval: RetrievalConfig{
			SemanticWeight:  0.7,
			KeywordWeight:   0.3,
			TopK:            20,
			DiversityWeight: 0.1,
			MaxPerDocument:  2,
			Mode:            ModeHybrid,
		},
		Chunking: ChunkingConfig{
			MaxSize: 1000,
			Overlap: 200,
			Smart:   true,
		},
		Dedup: DedupConfig{
			TitleThreshold:  0.85,
			AuthorThreshold: 0.70,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "ollama",
			Model:      "nomic-embed-text",
			OllamaHost: "http://localhost:11434",
			BatchSize:  32,
			CacheSize:  1000,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paperrag"
	}
	return filepath.Join(home, ".paperrag")
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads the config file at path, fills unset fields with defaults
// and applies environment overrides. A missing file is not an error: the
// defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, ragerr.New(ragerr.ErrCodeConfigNotFound, "failed to read config file", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, ragerr.New(ragerr.ErrCodeConfigInvalid, "failed to parse config file", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies PAPERRAG_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAPERRAG_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("PAPERRAG_SEMANTIC_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retrieval.SemanticWeight = f
		}
	}
	if v := os.Getenv("PAPERRAG_KEYWORD_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retrieval.KeywordWeight = f
		}
	}
	if v := os.Getenv("PAPERRAG_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retrieval.TopK = n
		}
	}
	if v := os.Getenv("PAPERRAG_MODE"); v != "" {
		c.Retrieval.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("PAPERRAG_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("PAPERRAG_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("PAPERRAG_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("PAPERRAG_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Retrieval.SemanticWeight < 0 || c.Retrieval.KeywordWeight < 0 {
		return ragerr.New(ragerr.ErrCodeInvalidWeights,
			"retrieval weights must be non-negative", nil)
	}
	if c.Retrieval.TopK <= 0 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid, "top_k must be positive", nil)
	}
	if c.Retrieval.MaxPerDocument <= 0 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid, "max_per_document must be positive", nil)
	}
	switch c.Retrieval.Mode {
	case ModeHybrid, ModeSemantic, ModeLexical:
	default:
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown retrieval mode %q", c.Retrieval.Mode), nil)
	}

	if c.Chunking.MaxSize <= 0 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid, "chunking max_size must be positive", nil)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.MaxSize {
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			"chunking overlap must be non-negative and smaller than max_size", nil)
	}

	if c.Dedup.TitleThreshold <= 0 || c.Dedup.TitleThreshold > 1 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid, "dedup title_threshold must be in (0, 1]", nil)
	}
	if c.Dedup.AuthorThreshold <= 0 || c.Dedup.AuthorThreshold > 1 {
		return ragerr.New(ragerr.ErrCodeConfigInvalid, "dedup author_threshold must be in (0, 1]", nil)
	}

	switch c.Embeddings.Provider {
	case "ollama", "static":
	default:
		return ragerr.New(ragerr.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown embeddings provider %q", c.Embeddings.Provider), nil)
	}

	return nil
}

// WriteYAML writes the configuration to path, creating directories as
// needed.
func (c *Config) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to create config directory", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeConfigInvalid, "failed to encode config", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to write config file", err)
	}
	return nil
}
