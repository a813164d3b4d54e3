package factory

import (
	"errors"
	"testing"

	"mindcare-rag-be/pkg/llm"
	"mindcare-rag-be/pkg/llm/gemini"
	"mindcare-rag-be/pkg/llm/ollama"
	"mindcare-rag-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ProviderConfig
		wantType    interface{}
		wantMissing bool
		wantNoModel bool
		wantErr     bool
	}{
		{name: "gemini with key", cfg: ProviderConfig{Provider: "gemini", APIKey: "k"}, wantType: &gemini.GeminiProvider{}},
		{name: "gemini without key", cfg: ProviderConfig{Provider: "gemini"}, wantMissing: true, wantErr: true},
		{name: "openai with key", cfg: ProviderConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"}, wantType: &openai.OpenAIProvider{}},
		{name: "openai official api defaults model", cfg: ProviderConfig{Provider: "openai", APIKey: "k"}, wantType: &openai.OpenAIProvider{}},
		{name: "openai compatible endpoint without model", cfg: ProviderConfig{Provider: "openai", APIKey: "k", BaseURL: "http://localhost:8000/v1"}, wantNoModel: true, wantErr: true},
		{name: "openai without key", cfg: ProviderConfig{Provider: "openai"}, wantMissing: true, wantErr: true},
		{name: "ollama needs no key", cfg: ProviderConfig{Provider: "ollama", Model: "llama3"}, wantType: &ollama.OllamaProvider{}},
		{name: "unknown provider", cfg: ProviderConfig{Provider: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLLMProvider(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, p)
				assert.Equal(t, tt.wantMissing, errors.Is(err, llm.ErrMissingCredential))
				assert.Equal(t, tt.wantNoModel, errors.Is(err, llm.ErrMissingModel))
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
		})
	}
}
