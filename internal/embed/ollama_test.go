package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

// fakeOllama serves /api/embed and /api/tags with canned vectors.
func fakeOllama(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"nomic-embed-text"}]}`))
	})
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		count := 1
		if inputs, ok := req.Input.([]any); ok {
			count = len(inputs)
		}
		embeddings := make([][]float64, count)
		for i := range embeddings {
			vec := make([]float64, dims)
			vec[0] = float64(i + 1)
			embeddings[i] = vec
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Model:      "nomic-embed-text",
			Embeddings: embeddings,
		})
	})
	return httptest.NewServer(mux)
}

func newTestEmbedder(t *testing.T, host string) *OllamaEmbedder {
	t.Helper()
	cfg := DefaultOllamaConfig()
	cfg.Host = host
	e, err := NewOllamaEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestOllamaEmbedder_DetectsDimensions(t *testing.T) {
	srv := fakeOllama(t, 16)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)
	assert.Equal(t, 16, e.Dimensions())
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	srv := fakeOllama(t, 8)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	vec, err := e.Embed(context.Background(), "transformer models")
	require.NoError(t, err)
	require.Len(t, vec, 8)
	assert.Equal(t, float32(1), vec[0])
}

func TestOllamaEmbedder_EmptyInputSkipsServer(t *testing.T) {
	srv := fakeOllama(t, 8)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)
	srv.Close() // no request may hit the server from here on

	vec, err := e.Embed(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestOllamaEmbedder_EmbedBatchPreservesOrder(t *testing.T) {
	srv := fakeOllama(t, 4)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	got, err := e.EmbedBatch(context.Background(), []string{"first", "", "third"})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, float32(1), got[0][0])
	assert.Equal(t, make([]float32, 4), got[1])
	assert.Equal(t, float32(2), got[2][0])
}

func TestOllamaEmbedder_ServerErrorSurfacesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.Host = srv.URL
	cfg.SkipHealthCheck = true
	cfg.Dimensions = 8
	e, err := NewOllamaEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Embed(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeEmbeddingFailed, ragerr.GetCode(err))
}

func TestOllamaEmbedder_ClosedEmbedderRejectsCalls(t *testing.T) {
	srv := fakeOllama(t, 8)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "anything")
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeEmbedderDown, ragerr.GetCode(err))
}

func TestOllamaEmbedder_Available(t *testing.T) {
	srv := fakeOllama(t, 8)
	e := newTestEmbedder(t, srv.URL)

	assert.True(t, e.Available(context.Background()))
	srv.Close()
	assert.False(t, e.Available(context.Background()))
}
