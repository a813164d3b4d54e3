package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"mindcare-rag-be/internal/model"
	"mindcare-rag-be/internal/repository/implementation"
	"mindcare-rag-be/internal/repository/specification"
	"mindcare-rag-be/pkg/database"
	"mindcare-rag-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassageRepository_Postgres(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error)
	require.NoError(t, db.AutoMigrate(&model.KnowledgeCollection{}, &model.Passage{}))

	ctx := context.Background()
	repo := implementation.NewPassageRepository(db)
	name := "it_" + uuid.NewString()[:8]

	c, err := repo.EnsureCollection(ctx, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Where("collection_id = ?", c.ID).Delete(&model.Passage{})
		db.Where("id = ?", c.ID).Delete(&model.KnowledgeCollection{})
	})

	again, err := repo.EnsureCollection(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)

	records := []vectorstore.Record{
		{ID: "a", Content: "worry", Metadata: map[string]string{"title": "Anxiety"}, Vector: []float32{1, 0, 0}},
		{ID: "b", Content: "sleep", Vector: []float32{0, 1, 0}},
		{ID: "c", Content: "mood", Vector: []float32{0, 0, 1}},
	}
	require.NoError(t, repo.Upsert(ctx, c, records))

	t.Run("search orders by cosine distance", func(t *testing.T) {
		hits, err := repo.Search(ctx, c, []float32{0.9, 0.1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "a", hits[0].ID)
		assert.Equal(t, "Anxiety", hits[0].Metadata["title"])
		assert.Equal(t, "b", hits[1].ID)
		assert.LessOrEqual(t, hits[0].Score, hits[1].Score)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, c, []vectorstore.Record{
			{ID: "a", Content: "worry, revised", Vector: []float32{1, 0, 0}},
		}))

		count, err := repo.Count(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		hits, err := repo.Search(ctx, c, []float32{1, 0, 0}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "worry, revised", hits[0].Content)
	})

	t.Run("find collection is lookup only", func(t *testing.T) {
		found, err := repo.FindCollection(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)

		missing := name + "_missing"
		_, err = repo.FindCollection(ctx, missing)
		assert.ErrorIs(t, err, vectorstore.ErrNoCollection)

		rows, err := repo.ListCollections(ctx, specification.ByName{Name: missing})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("list collections by name", func(t *testing.T) {
		found, err := repo.ListCollections(ctx, specification.ByName{Name: name})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, name, found[0].Name)
	})
}
