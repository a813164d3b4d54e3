package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaProvider embeds text with a local Ollama model. all-minilm matches the
// sentence-transformers model the knowledge base was originally indexed with.
type OllamaProvider struct {
	client *api.Client
	Model  string
}

func NewOllamaProvider(baseURL string, model string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "all-minilm"
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}

	return &OllamaProvider{
		client: api.NewClient(base, &http.Client{Timeout: 60 * time.Second}),
		Model:  model,
	}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, _ string) (*EmbeddingResponse, error) {
	resp, err := p.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:     p.Model,
		Prompt:    text,
		KeepAlive: &api.Duration{Duration: 30 * time.Minute},
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}

	return newResponse(toFloat32(resp.Embedding))
}
