package integration

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/embedding"
	"mindcare-rag-be/pkg/llm"
	"mindcare-rag-be/pkg/llm/ollama"
	"mindcare-rag-be/pkg/rag/intent"
	"mindcare-rag-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama server, e.g.
// OLLAMA_TEST_URL=http://localhost:11434 OLLAMA_TEST_MODEL=gemma:2b OLLAMA_TEST_EMBED_MODEL=all-minilm
func ollamaEnv(t *testing.T) (baseURL, model, embedModel string) {
	t.Helper()
	baseURL = os.Getenv("OLLAMA_TEST_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_TEST_URL not set")
	}
	model = os.Getenv("OLLAMA_TEST_MODEL")
	if model == "" {
		model = "gemma:2b"
	}
	embedModel = os.Getenv("OLLAMA_TEST_EMBED_MODEL")
	return baseURL, model, embedModel
}

func TestOllama_Generate(t *testing.T) {
	baseURL, model, _ := ollamaEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, err := ollama.NewOllamaProvider(baseURL, model)
	require.NoError(t, err)
	reply, err := provider.Generate(ctx, "Reply with one word: hello", llm.WithTemperature(0))
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(reply))
}

func TestOllama_DelegatedClassifier(t *testing.T) {
	baseURL, model, _ := ollamaEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, err := ollama.NewOllamaProvider(baseURL, model)
	require.NoError(t, err)

	classifier := intent.NewDelegatedClassifier(provider, nil, logger.NewNopLogger())
	got := classifier.Classify(ctx, "What are the symptoms of depression?")

	assert.Contains(t, intent.All(), got.Intent)
}

func TestOllama_EmbedAndQuery(t *testing.T) {
	baseURL, _, embedModel := ollamaEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	embedder, err := embedding.NewOllamaProvider(baseURL, embedModel)
	require.NoError(t, err)

	store := vectorstore.NewManager(vectorstore.NewMemoryBackend(), embedder, logger.NewNopLogger())
	require.NoError(t, store.AddDocuments(ctx, "nimh_articles",
		[]string{
			"Generalized anxiety disorder involves persistent and excessive worry.",
			"Good sleep hygiene includes a regular bedtime and a dark room.",
		},
		[]map[string]string{{"title": "GAD"}, {"title": "Sleep"}},
		[]string{"gad", "sleep"},
	))

	hits, err := store.Query(ctx, "nimh_articles", "I worry all the time", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "gad", hits[0].ID)
}
