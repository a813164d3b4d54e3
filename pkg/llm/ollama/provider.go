package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mindcare-rag-be/pkg/llm"

	"github.com/ollama/ollama/api"
)

const (
	defaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
)

// OllamaProvider generates text with a locally served Ollama model.
type OllamaProvider struct {
	client    *api.Client
	ModelName string
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}

	return &OllamaProvider{
		client:    api.NewClient(base, &http.Client{Timeout: 120 * time.Second}),
		ModelName: modelName,
	}, nil
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(opts...)

	messages := make([]api.Message, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		messages[i] = api.Message{Role: role, Content: msg.Content}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	modelOptions := map[string]any{"temperature": options.Temperature}
	if options.MaxTokens > 0 {
		modelOptions["num_predict"] = options.MaxTokens
	}

	stream := false
	var reply strings.Builder
	err := o.client.Chat(ctx, &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options:  modelOptions,
	}, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("ollama error: status %d: %s", statusErr.StatusCode, statusErr.ErrorMessage)
		}
		return "", fmt.Errorf("ollama request failed: %w", err)
	}

	if strings.TrimSpace(reply.String()) == "" {
		return "", llm.ErrEmptyResponse
	}
	return reply.String(), nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
