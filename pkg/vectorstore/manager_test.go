package vectorstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/vectorstore"
	"mindcare-rag-be/pkg/vectorstore/vectorstoretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(embedder *vectorstoretest.HashEmbedder) *vectorstore.Manager {
	return vectorstore.NewManager(vectorstore.NewMemoryBackend(), embedder, logger.NewNopLogger())
}

func TestManager_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	m := newManager(&vectorstoretest.HashEmbedder{})

	err := m.AddDocuments(ctx, "nimh_articles",
		[]string{
			"anxiety disorder symptoms include worry",
			"depression treatment options",
			"sleep hygiene tips",
		},
		[]map[string]string{{"title": "Anxiety"}, {"title": "Depression"}, nil},
		[]string{"a", "b", "c"},
	)
	require.NoError(t, err)

	res, err := m.Query(ctx, "nimh_articles", "anxiety symptoms", 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].ID)
	assert.Equal(t, "Anxiety", res[0].Metadata["title"])
	assert.LessOrEqual(t, res[0].Score, res[1].Score)
}

func TestManager_UpsertReplacesById(t *testing.T) {
	ctx := context.Background()
	m := newManager(&vectorstoretest.HashEmbedder{})

	require.NoError(t, m.AddDocuments(ctx, "c", []string{"old"}, nil, []string{"x"}))
	require.NoError(t, m.AddDocuments(ctx, "c", []string{"new"}, nil, []string{"x"}))

	assert.Equal(t, 1, m.Count(ctx, "c"))
	res, err := m.Query(ctx, "c", "new", 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "new", res[0].Content)
}

func TestManager_Batches(t *testing.T) {
	ctx := context.Background()
	m := newManager(&vectorstoretest.HashEmbedder{})

	n := vectorstore.DefaultBatchSize*2 + 5
	texts := make([]string, n)
	ids := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("passage number %d", i)
		ids[i] = fmt.Sprintf("id_%d", i)
	}

	require.NoError(t, m.AddDocuments(ctx, "counseling", texts, nil, ids))
	assert.Equal(t, n, m.Count(ctx, "counseling"))
}

func TestManager_Validation(t *testing.T) {
	ctx := context.Background()
	m := newManager(&vectorstoretest.HashEmbedder{})

	err := m.AddDocuments(ctx, "c", []string{"a", "b"}, nil, []string{"1"})
	assert.ErrorIs(t, err, vectorstore.ErrLengthMismatch)

	err = m.AddDocuments(ctx, "c", []string{"a"}, []map[string]string{{}, {}}, []string{"1"})
	assert.ErrorIs(t, err, vectorstore.ErrLengthMismatch)

	_, err = m.Query(ctx, "", "q", 3)
	assert.ErrorIs(t, err, vectorstore.ErrEmptyName)

	res, err := m.Query(ctx, "c", "q", 0)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestManager_CountUnknownIsZero(t *testing.T) {
	m := newManager(&vectorstoretest.HashEmbedder{})
	assert.Equal(t, 0, m.Count(context.Background(), "never_seen"))
	assert.Equal(t, 0, m.Count(context.Background(), ""))
}

func TestManager_EmbeddingErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	backend := vectorstore.NewMemoryBackend()
	_, err := backend.EnsureCollection(ctx, "c")
	require.NoError(t, err)

	m := vectorstore.NewManager(backend, &vectorstoretest.HashEmbedder{Err: errors.New("embedder down")}, logger.NewNopLogger())
	_, err = m.Query(ctx, "c", "q", 3)
	assert.Error(t, err)
}

func TestManager_QueryEmbeddingCached(t *testing.T) {
	ctx := context.Background()
	backend := vectorstore.NewMemoryBackend()
	for _, name := range []string{"cbt_bible", "act_simple"} {
		_, err := backend.EnsureCollection(ctx, name)
		require.NoError(t, err)
	}

	embedder := &vectorstoretest.HashEmbedder{}
	m := vectorstore.NewManager(backend, embedder, logger.NewNopLogger())

	_, err := m.Query(ctx, "cbt_bible", "same question", 3)
	require.NoError(t, err)
	_, err = m.Query(ctx, "act_simple", "same question", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.Calls())
}

// ensureCounter records which collections a Manager asked to create.
type ensureCounter struct {
	*vectorstore.MemoryBackend
	ensured []string
}

func (b *ensureCounter) EnsureCollection(ctx context.Context, name string) (*vectorstore.Collection, error) {
	b.ensured = append(b.ensured, name)
	return b.MemoryBackend.EnsureCollection(ctx, name)
}

func TestManager_ReadsDoNotCreateCollections(t *testing.T) {
	ctx := context.Background()
	backend := &ensureCounter{MemoryBackend: vectorstore.NewMemoryBackend()}
	embedder := &vectorstoretest.HashEmbedder{}
	m := vectorstore.NewManager(backend, embedder, logger.NewNopLogger())

	t.Run("query on unknown collection is empty", func(t *testing.T) {
		res, err := m.Query(ctx, "never_ingested", "q", 3)
		require.NoError(t, err)
		assert.Empty(t, res)
		assert.Zero(t, embedder.Calls())
	})

	t.Run("count on unknown collection is zero", func(t *testing.T) {
		assert.Equal(t, 0, m.Count(ctx, "never_ingested"))
	})

	t.Run("nothing was created", func(t *testing.T) {
		assert.Empty(t, backend.ensured)
		_, err := backend.FindCollection(ctx, "never_ingested")
		assert.ErrorIs(t, err, vectorstore.ErrNoCollection)
	})

	t.Run("collection becomes readable once written", func(t *testing.T) {
		require.NoError(t, m.AddDocuments(ctx, "never_ingested", []string{"hello"}, nil, []string{"h"}))
		assert.Equal(t, []string{"never_ingested"}, backend.ensured)
		assert.Equal(t, 1, m.Count(ctx, "never_ingested"))

		res, err := m.Query(ctx, "never_ingested", "hello", 3)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "h", res[0].ID)
	})
}
