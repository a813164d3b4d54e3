package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/embedding"

	"github.com/patrickmn/go-cache"
)

const (
	moduleName = "vectorstore"

	// DefaultBatchSize bounds how many records go to the backend per write.
	DefaultBatchSize = 100
)

type Manager struct {
	backend   Backend
	embedder  embedding.EmbeddingProvider
	logger    logger.ILogger
	batchSize int

	// query embeddings are reused across the collections of one request
	queryCache *cache.Cache

	mu      sync.RWMutex
	handles map[string]*Collection
}

var _ Store = &Manager{}

func NewManager(backend Backend, embedder embedding.EmbeddingProvider, log logger.ILogger) *Manager {
	return &Manager{
		backend:    backend,
		embedder:   embedder,
		logger:     log,
		batchSize:  DefaultBatchSize,
		queryCache: cache.New(5*time.Minute, 10*time.Minute),
		handles:    make(map[string]*Collection),
	}
}

// collection returns the cached handle for name, creating it on first use.
func (m *Manager) collection(ctx context.Context, name string) (*Collection, error) {
	return m.handle(ctx, name, m.backend.EnsureCollection)
}

// lookup is the read-side twin of collection: it never creates name and
// returns ErrNoCollection when nothing was ever written to it.
func (m *Manager) lookup(ctx context.Context, name string) (*Collection, error) {
	return m.handle(ctx, name, m.backend.FindCollection)
}

func (m *Manager) handle(ctx context.Context, name string, resolve func(context.Context, string) (*Collection, error)) (*Collection, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	m.mu.RLock()
	h, ok := m.handles[name]
	m.mu.RUnlock()
	if ok {
		return h, nil
	}

	h, err := resolve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.handles[name]; ok {
		return existing, nil
	}
	m.handles[name] = h
	return h, nil
}

func (m *Manager) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if v, found := m.queryCache.Get(query); found {
		return v.([]float32), nil
	}

	res, err := m.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	m.queryCache.Set(query, res.Embedding.Values, cache.DefaultExpiration)
	return res.Embedding.Values, nil
}

// Query returns the k passages of collection closest to query. A collection
// that was never ingested yields no passages.
func (m *Manager) Query(ctx context.Context, collection, query string, k int) ([]Passage, error) {
	if k <= 0 {
		return []Passage{}, nil
	}

	h, err := m.lookup(ctx, collection)
	if errors.Is(err, ErrNoCollection) {
		return []Passage{}, nil
	}
	if err != nil {
		return nil, err
	}

	vector, err := m.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	passages, err := m.backend.Search(ctx, h, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return passages, nil
}

// AddDocuments embeds and upserts texts in batches. Records are keyed by id
// within the collection, so re-ingesting replaces earlier content.
func (m *Manager) AddDocuments(ctx context.Context, collection string, texts []string, metadatas []map[string]string, ids []string) error {
	if len(texts) != len(ids) || (metadatas != nil && len(metadatas) != len(texts)) {
		return ErrLengthMismatch
	}
	if len(texts) == 0 {
		return nil
	}

	h, err := m.collection(ctx, collection)
	if err != nil {
		return err
	}

	totalBatches := (len(texts)-1)/m.batchSize + 1
	for start := 0; start < len(texts); start += m.batchSize {
		end := min(start+m.batchSize, len(texts))

		records := make([]Record, 0, end-start)
		for i := start; i < end; i++ {
			res, err := m.embedder.Generate(ctx, texts[i], embedding.TaskRetrievalDocument)
			if err != nil {
				return fmt.Errorf("embed document %s: %w", ids[i], err)
			}

			meta := map[string]string{}
			if metadatas != nil && metadatas[i] != nil {
				meta = metadatas[i]
			}
			records = append(records, Record{
				ID:       ids[i],
				Content:  texts[i],
				Metadata: meta,
				Vector:   res.Embedding.Values,
			})
		}

		if err := m.backend.Upsert(ctx, h, records); err != nil {
			return fmt.Errorf("upsert batch %d/%d into %s: %w", start/m.batchSize+1, totalBatches, collection, err)
		}

		m.logger.Info(moduleName, "Added batch", map[string]interface{}{
			"collection": collection,
			"batch":      start/m.batchSize + 1,
			"of":         totalBatches,
		})
	}

	return nil
}

// Count returns the number of passages in collection, or 0 when it cannot be read.
func (m *Manager) Count(ctx context.Context, collection string) int {
	h, err := m.lookup(ctx, collection)
	if errors.Is(err, ErrNoCollection) {
		return 0
	}
	if err != nil {
		m.logger.Warn(moduleName, "Count failed", map[string]interface{}{"collection": collection, "error": err.Error()})
		return 0
	}

	n, err := m.backend.Count(ctx, h)
	if err != nil {
		m.logger.Warn(moduleName, "Count failed", map[string]interface{}{"collection": collection, "error": err.Error()})
		return 0
	}
	return int(n)
}
