package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeHybrid, cfg.Retrieval.Mode)
	assert.Equal(t, 0.7, cfg.Retrieval.SemanticWeight)
	assert.Equal(t, 0.3, cfg.Retrieval.KeywordWeight)
	assert.Equal(t, 2, cfg.Retrieval.MaxPerDocument)
	assert.Equal(t, 1000, cfg.Chunking.MaxSize)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, NewConfig().Retrieval, cfg.Retrieval)
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
retrieval:
  semantic_weight: 0.5
  keyword_weight: 0.5
  top_k: 10
  diversity_weight: 0.1
  max_per_document: 3
  mode: semantic
chunking:
  max_size: 500
  overlap: 50
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Retrieval.SemanticWeight)
	assert.Equal(t, 3, cfg.Retrieval.MaxPerDocument)
	assert.Equal(t, ModeSemantic, cfg.Retrieval.Mode)
	assert.Equal(t, 500, cfg.Chunking.MaxSize)
	// Untouched sections keep their defaults
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  mode: semantic\n"), 0644))

	t.Setenv("PAPERRAG_MODE", "lexical")
	t.Setenv("PAPERRAG_TOP_K", "7")
	t.Setenv("PAPERRAG_OLLAMA_HOST", "http://example:11434")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeLexical, cfg.Retrieval.Mode)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.Equal(t, "http://example:11434", cfg.Embeddings.OllamaHost)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval: ["), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeConfigInvalid, ragerr.GetCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		code    string
	}{
		{"negative semantic weight", func(c *Config) { c.Retrieval.SemanticWeight = -0.1 }, ragerr.ErrCodeInvalidWeights},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }, ragerr.ErrCodeConfigInvalid},
		{"zero max_per_document", func(c *Config) { c.Retrieval.MaxPerDocument = 0 }, ragerr.ErrCodeConfigInvalid},
		{"unknown mode", func(c *Config) { c.Retrieval.Mode = "psychic" }, ragerr.ErrCodeConfigInvalid},
		{"overlap not below max_size", func(c *Config) { c.Chunking.Overlap = c.Chunking.MaxSize }, ragerr.ErrCodeConfigInvalid},
		{"title threshold above one", func(c *Config) { c.Dedup.TitleThreshold = 1.5 }, ragerr.ErrCodeConfigInvalid},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "crystal-ball" }, ragerr.ErrCodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.code, ragerr.GetCode(err))
		})
	}

	t.Run("zero weights are allowed", func(t *testing.T) {
		// The combiner corrects a zero weight sum at query time
		cfg := NewConfig()
		cfg.Retrieval.SemanticWeight = 0
		cfg.Retrieval.KeywordWeight = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := NewConfig()
	cfg.Retrieval.TopK = 42
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Retrieval.TopK)
}
