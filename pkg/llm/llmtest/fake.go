// Package llmtest provides a scripted llm.LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"

	"mindcare-rag-be/pkg/llm"
)

// FakeProvider returns Response (or Err) and records every prompt it sees.
type FakeProvider struct {
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
}

var _ llm.LLMProvider = &FakeProvider{}

func (f *FakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	var last string
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return f.Generate(ctx, last, opts...)
}

func (f *FakeProvider) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *FakeProvider) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

func (f *FakeProvider) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}
