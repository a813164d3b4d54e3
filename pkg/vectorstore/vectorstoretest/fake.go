// Package vectorstoretest holds deterministic fakes for retrieval tests.
package vectorstoretest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"mindcare-rag-be/pkg/embedding"
	"mindcare-rag-be/pkg/vectorstore"
)

// FakeSearcher returns canned passages per collection and records every query.
type FakeSearcher struct {
	Results map[string][]vectorstore.Passage
	Errs    map[string]error

	mu      sync.Mutex
	queried []string
	ks      map[string]int
}

var _ vectorstore.Searcher = &FakeSearcher{}

func (f *FakeSearcher) Query(_ context.Context, collection, _ string, k int) ([]vectorstore.Passage, error) {
	f.mu.Lock()
	f.queried = append(f.queried, collection)
	if f.ks == nil {
		f.ks = make(map[string]int)
	}
	f.ks[collection] = k
	f.mu.Unlock()

	if err := f.Errs[collection]; err != nil {
		return nil, err
	}

	res := f.Results[collection]
	if len(res) > k {
		res = res[:k]
	}
	out := make([]vectorstore.Passage, len(res))
	copy(out, res)
	return out, nil
}

// Queried lists collections in query order.
func (f *FakeSearcher) Queried() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queried))
	copy(out, f.queried)
	return out
}

// K returns the k requested for collection on its last query.
func (f *FakeSearcher) K(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ks[collection]
}

// HashEmbedder is a bag-of-words embedder: each lowercased word bumps one of
// Dims buckets. Texts sharing words end up close.
type HashEmbedder struct {
	Dims int
	Err  error

	mu    sync.Mutex
	calls int
}

var _ embedding.EmbeddingProvider = &HashEmbedder{}

func (h *HashEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()

	if h.Err != nil {
		return nil, h.Err
	}

	dims := h.Dims
	if dims <= 0 {
		dims = 64
	}
	vec := make([]float32, dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"")
		if word == "" {
			continue
		}
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(word))
		vec[hasher.Sum32()%uint32(dims)]++
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: vec}}, nil
}

func (h *HashEmbedder) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}
