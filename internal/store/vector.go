package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/coder/hnsw"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

// HNSWStore implements VectorStore on the pure-Go coder/hnsw graph.
// No CGO, so the binary stays a single static artifact.
type HNSWStore struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config VectorStoreConfig

	idMap   map[string]uint64 // chunk ID -> internal key
	keyMap  map[uint64]string // internal key -> chunk ID
	nextKey uint64

	closed bool
}

var _ VectorStore = (*HNSWStore)(nil)

// hnswSidecar persists the ID mappings alongside the exported graph.
type hnswSidecar struct {
	IDMap   map[string]uint64
	NextKey uint64
	Config  VectorStoreConfig
}

// NewHNSWStore creates an empty vector store.
func NewHNSWStore(cfg VectorStoreConfig) (*HNSWStore, error) {
	if cfg.Dimensions <= 0 {
		return nil, ragerr.New(ragerr.ErrCodeInvalidInput,
			"vector store dimensions must be positive", nil)
	}
	if cfg.Metric == "" {
		cfg.Metric = "cos"
	}
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	switch cfg.Metric {
	case "l2":
		graph.Distance = hnsw.EuclideanDistance
	default:
		graph.Distance = hnsw.CosineDistance
	}
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &HNSWStore{
		graph:  graph,
		config: cfg,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}, nil
}

// Add inserts vectors under their chunk IDs. Re-adding an existing ID
// replaces it; the old graph node is orphaned rather than deleted, which
// sidesteps graph breakage when removing the last node.
func (s *HNSWStore) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) {
		return ragerr.New(ragerr.ErrCodeInvalidInput,
			"ids and vectors length mismatch", nil).
			WithDetail("ids", strconv.Itoa(len(ids))).
			WithDetail("vectors", strconv.Itoa(len(vectors)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "vector store is closed", nil)
	}

	for _, v := range vectors {
		if len(v) != s.config.Dimensions {
			return dimensionMismatch(s.config.Dimensions, len(v))
		}
	}

	for i, id := range ids {
		if existingKey, exists := s.idMap[id]; exists {
			delete(s.keyMap, existingKey)
			delete(s.idMap, id)
		}

		key := s.nextKey
		s.nextKey++

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		if s.config.Metric == "cos" {
			normalizeInPlace(vec)
		}

		s.graph.Add(hnsw.MakeNode(key, vec))
		s.idMap[id] = key
		s.keyMap[key] = id
	}

	return nil
}

// Search returns up to k nearest neighbors, best first.
func (s *HNSWStore) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ragerr.New(ragerr.ErrCodeStoreFailed, "vector store is closed", nil)
	}
	if len(query) != s.config.Dimensions {
		return nil, dimensionMismatch(s.config.Dimensions, len(query))
	}
	if s.graph.Len() == 0 {
		return []*VectorResult{}, nil
	}

	q := make([]float32, len(query))
	copy(q, query)
	if s.config.Metric == "cos" {
		normalizeInPlace(q)
	}

	nodes := s.graph.Search(q, k)

	results := make([]*VectorResult, 0, len(nodes))
	for _, node := range nodes {
		id, ok := s.keyMap[node.Key]
		if !ok {
			// orphaned by a re-add or delete
			continue
		}
		distance := s.graph.Distance(q, node.Value)
		results = append(results, &VectorResult{
			ID:       id,
			Distance: distance,
			Score:    distanceToScore(distance, s.config.Metric),
		})
	}
	return results, nil
}

// Delete removes vectors by chunk ID. Graph nodes are orphaned, not
// removed; they stop appearing in results immediately.
func (s *HNSWStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "vector store is closed", nil)
	}

	for _, id := range ids {
		if key, exists := s.idMap[id]; exists {
			delete(s.keyMap, key)
			delete(s.idMap, id)
		}
	}
	return nil
}

// Contains reports whether the chunk ID is indexed.
func (s *HNSWStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	_, exists := s.idMap[id]
	return exists
}

// Count returns the number of live vectors.
func (s *HNSWStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}
	return len(s.idMap)
}

// Dimensions returns the configured embedding dimension.
func (s *HNSWStore) Dimensions() int {
	return s.config.Dimensions
}

// Save persists the graph and ID mappings atomically (temp file plus
// rename). The sidecar file lives at path + ".meta".
func (s *HNSWStore) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "vector store is closed", nil)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to create index directory", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to create index file", err)
	}
	if err := s.graph.Export(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to export graph", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to close index file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to rename index file", err)
	}

	return s.saveSidecar(path + ".meta")
}

func (s *HNSWStore) saveSidecar(path string) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to create sidecar file", err)
	}

	meta := hnswSidecar{IDMap: s.idMap, NextKey: s.nextKey, Config: s.config}
	if err := gob.NewEncoder(file).Encode(meta); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to encode sidecar", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to close sidecar file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return ragerr.New(ragerr.ErrCodeStoreFailed, "failed to rename sidecar file", err)
	}
	return nil
}

// Load restores a saved index. The store's config is replaced by the
// saved one.
func (s *HNSWStore) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ragerr.New(ragerr.ErrCodeStoreFailed, "vector store is closed", nil)
	}

	metaFile, err := os.Open(path + ".meta")
	if err != nil {
		return ragerr.New(ragerr.ErrCodeCorruptIndex, "failed to open index sidecar", err)
	}
	defer func() { _ = metaFile.Close() }()

	var meta hnswSidecar
	if err := gob.NewDecoder(metaFile).Decode(&meta); err != nil {
		return ragerr.New(ragerr.ErrCodeCorruptIndex, "failed to decode index sidecar", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return ragerr.New(ragerr.ErrCodeCorruptIndex, "failed to open index file", err)
	}
	defer func() { _ = file.Close() }()

	// coder/hnsw Import requires an io.ByteReader
	if err := s.graph.Import(bufio.NewReader(file)); err != nil {
		return ragerr.New(ragerr.ErrCodeCorruptIndex, "failed to import graph", err)
	}

	s.idMap = meta.IDMap
	s.nextKey = meta.NextKey
	s.config = meta.Config
	s.keyMap = make(map[uint64]string, len(meta.IDMap))
	for id, key := range s.idMap {
		s.keyMap[key] = id
	}
	return nil
}

// Close releases the graph. Safe to call twice.
func (s *HNSWStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.graph = nil
	return nil
}

func dimensionMismatch(expected, got int) error {
	return ragerr.New(ragerr.ErrCodeDimensionMismatch, "embedding dimension mismatch", nil).
		WithDetail("expected", strconv.Itoa(expected)).
		WithDetail("got", strconv.Itoa(got))
}

// normalizeInPlace normalizes a vector to unit length in place.
func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

// distanceToScore converts a metric distance to a similarity in [0, 1].
// Cosine distance spans [0, 2]; L2 spans [0, inf).
func distanceToScore(distance float32, metric string) float32 {
	switch metric {
	case "l2":
		return 1.0 / (1.0 + distance)
	default:
		return 1.0 - distance/2.0
	}
}
