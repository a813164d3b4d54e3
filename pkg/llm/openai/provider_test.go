package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindcare-rag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "local-model",
	"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "I hear you."}}]
}`

func TestOpenAIProvider_Chat(t *testing.T) {
	var captured capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer server.Close()

	p := NewOpenAIProvider("secret", server.URL, "local-model")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be kind"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: "model", Content: "hello"},
		{Role: llm.RoleUser, Content: "how are you"},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "I hear you.", out)
	assert.Equal(t, "local-model", captured.Model)
	assert.Equal(t, 0.2, captured.Temperature)
	assert.Equal(t, 64, captured.MaxTokens)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
}

func TestOpenAIProvider_DefaultModel(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		model   string
		want    string
	}{
		{name: "official api without model", baseURL: "", model: "", want: DefaultModel},
		{name: "official api keeps model", baseURL: "", model: "gpt-4.1", want: "gpt-4.1"},
		{name: "compatible endpoint keeps model", baseURL: "http://localhost:8000/v1", model: "qwen", want: "qwen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewOpenAIProvider("k", tt.baseURL, tt.model).model)
		})
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"you must provide a model parameter","type":"invalid_request_error"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, wantErr: llm.ErrEmptyResponse},
		{
			name:    "blank content",
			status:  http.StatusOK,
			body:    `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" "}}]}`,
			wantErr: llm.ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOpenAIProvider("k", server.URL, "m").Generate(context.Background(), "prompt")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
