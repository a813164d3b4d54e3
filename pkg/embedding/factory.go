package embedding

import (
	"fmt"

	"mindcare-rag-be/pkg/llm"
)

type ProviderConfig struct {
	Provider   string // "ollama", "gemini", "openai"
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
}

func NewEmbeddingProvider(cfg ProviderConfig) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "ollama":
		p, err := NewOllamaProvider(cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini embeddings: %w (set GEMINI_API_KEY)", llm.ErrMissingCredential)
		}
		p := NewGeminiProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			p.BaseURL = cfg.BaseURL
		}
		return p, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai embeddings: %w (set OPENAI_API_KEY)", llm.ErrMissingCredential)
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
