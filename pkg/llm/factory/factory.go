package factory

import (
	"fmt"

	"mindcare-rag-be/pkg/llm"
	"mindcare-rag-be/pkg/llm/gemini"
	"mindcare-rag-be/pkg/llm/ollama"
	"mindcare-rag-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Provider string // "gemini", "ollama", "openai"
	Model    string
	BaseURL  string
	APIKey   string
}

// NewLLMProvider refuses to build a hosted provider without its API key, and
// an OpenAI-compatible endpoint other than the official API without a model.
func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", llm.ErrMissingCredential)
		}
		return gemini.NewGeminiProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY)", llm.ErrMissingCredential)
		}
		if cfg.BaseURL != "" && cfg.Model == "" {
			return nil, fmt.Errorf("openai at %s: %w (set LLM_MODEL)", cfg.BaseURL, llm.ErrMissingModel)
		}
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "ollama":
		provider, err := ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
