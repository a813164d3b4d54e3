package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

type memoryCollection struct {
	records map[string]Record
	order   []string
}

// MemoryBackend is a brute-force cosine-distance backend kept entirely in process.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

var _ Backend = &MemoryBackend{}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string]*memoryCollection)}
}

func (b *MemoryBackend) EnsureCollection(_ context.Context, name string) (*Collection, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.collections[name]; !ok {
		b.collections[name] = &memoryCollection{records: make(map[string]Record)}
	}
	return &Collection{ID: name, Name: name}, nil
}

func (b *MemoryBackend) FindCollection(_ context.Context, name string) (*Collection, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.collections[name]; !ok {
		return nil, ErrNoCollection
	}
	return &Collection{ID: name, Name: name}, nil
}

func (b *MemoryBackend) Upsert(_ context.Context, c *Collection, records []Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	col := b.collections[c.Name]
	for _, r := range records {
		if _, exists := col.records[r.ID]; !exists {
			col.order = append(col.order, r.ID)
		}
		col.records[r.ID] = r
	}
	return nil
}

func (b *MemoryBackend) Search(_ context.Context, c *Collection, vector []float32, k int) ([]Passage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	col := b.collections[c.Name]
	passages := make([]Passage, 0, len(col.order))
	for _, id := range col.order {
		r := col.records[id]
		passages = append(passages, Passage{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: copyMetadata(r.Metadata),
			Score:    cosineDistance(vector, r.Vector),
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score < passages[j].Score
	})

	if len(passages) > k {
		passages = passages[:k]
	}
	return passages, nil
}

func (b *MemoryBackend) Count(_ context.Context, c *Collection) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(len(b.collections[c.Name].records)), nil
}

// cosineDistance matches pgvector's <=> operator: 1 - cosine similarity.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
