// Package retriever fans a query out over several collections and merges the hits.
package retriever

import (
	"context"
	"sort"

	"mindcare-rag-be/internal/metrics"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/rag/router"
	"mindcare-rag-be/pkg/vectorstore"
)

const moduleName = "retriever"

// Config mirrors the retrieval section of the service configuration.
type Config struct {
	TopKPerDB       int
	FewShotExamples int
	// SimilarityThreshold is carried for configuration parity. Hits are not
	// filtered by it.
	SimilarityThreshold float64
	MaxContextTokens    int
	ExamplesCollection  string
}

func DefaultConfig() Config {
	return Config{
		TopKPerDB:           3,
		FewShotExamples:     2,
		SimilarityThreshold: 0.7,
		MaxContextTokens:    8000,
		ExamplesCollection:  router.CollectionCounseling,
	}
}

// Result separates factual context from the counseling exemplars.
type Result struct {
	Context  []vectorstore.Passage
	Examples []vectorstore.Passage
}

type Retriever struct {
	searcher vectorstore.Searcher
	config   Config
	logger   logger.ILogger
	metrics  *metrics.Metrics
}

func New(searcher vectorstore.Searcher, cfg Config, log logger.ILogger, m *metrics.Metrics) *Retriever {
	if cfg.ExamplesCollection == "" {
		cfg.ExamplesCollection = router.CollectionCounseling
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Retriever{
		searcher: searcher,
		config:   cfg,
		logger:   log,
		metrics:  m,
	}
}

func (r *Retriever) Config() Config {
	return r.config
}

// Retrieve queries every collection with k and merges the hits by ascending
// score. A collection that fails is logged and left out.
func (r *Retriever) Retrieve(ctx context.Context, query string, collections []string, k int) []vectorstore.Passage {
	merged := make([]vectorstore.Passage, 0, len(collections)*max(k, 0))

	for _, name := range collections {
		hits, err := r.searcher.Query(ctx, name, query, k)
		if err != nil {
			r.metrics.RetrievalFailuresTotal.WithLabelValues(name).Inc()
			r.logger.Warn(moduleName, "Collection query failed, skipping", map[string]interface{}{
				"collection": name,
				"error":      err.Error(),
			})
			continue
		}

		for _, h := range hits {
			h.SourceCollection = name
			merged = append(merged, h)
		}
	}

	// Distances from different collections are compared as-is.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score < merged[j].Score
	})

	r.metrics.RetrievedPassages.Observe(float64(len(merged)))
	return merged
}

// RetrieveWithExamples runs the standard retrieval with TopKPerDB and pulls
// FewShotExamples exemplars from the counseling collection.
func (r *Retriever) RetrieveWithExamples(ctx context.Context, query string, collections []string) Result {
	res := Result{
		Context:  r.Retrieve(ctx, query, collections, r.config.TopKPerDB),
		Examples: []vectorstore.Passage{},
	}

	if r.config.FewShotExamples <= 0 {
		return res
	}

	examples, err := r.searcher.Query(ctx, r.config.ExamplesCollection, query, r.config.FewShotExamples)
	if err != nil {
		r.metrics.RetrievalFailuresTotal.WithLabelValues(r.config.ExamplesCollection).Inc()
		r.logger.Warn(moduleName, "Example query failed", map[string]interface{}{
			"collection": r.config.ExamplesCollection,
			"error":      err.Error(),
		})
		return res
	}

	for i := range examples {
		examples[i].SourceCollection = r.config.ExamplesCollection
	}
	res.Examples = examples
	return res
}
