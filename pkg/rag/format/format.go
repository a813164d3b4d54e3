// Package format renders retrieved passages into the prompt's context and
// example sections.
package format

import (
	"fmt"
	"strings"

	"mindcare-rag-be/pkg/utils"
	"mindcare-rag-be/pkg/vectorstore"
)

const (
	MaxContextDocs     = 10
	MaxContextRunes    = 2000
	MaxExampleRunes    = 1500
	DefaultTokenBudget = 8000

	contextSeparator = "\n\n---\n\n"
	exampleSeparator = "\n\n"
)

// Formatter applies the per-document limits and the overall token budget.
type Formatter struct {
	maxTokens   int
	countTokens func(string) int
}

// NewFormatter builds a formatter with a token budget; maxTokens <= 0 uses
// DefaultTokenBudget.
func NewFormatter(maxTokens int) *Formatter {
	if maxTokens <= 0 {
		maxTokens = DefaultTokenBudget
	}
	return &Formatter{maxTokens: maxTokens, countTokens: utils.CountTokens}
}

// WithTokenCounter swaps the token counter.
func (f *Formatter) WithTokenCounter(count func(string) int) *Formatter {
	f.countTokens = count
	return f
}

// FormatContext renders at most MaxContextDocs passages as
// "[source - title]\ncontent" blocks, then drops trailing blocks while the
// result exceeds the token budget.
func (f *Formatter) FormatContext(passages []vectorstore.Passage) string {
	if len(passages) > MaxContextDocs {
		passages = passages[:MaxContextDocs]
	}

	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, header(p)+"\n"+truncate(p.Content, MaxContextRunes))
	}

	out := strings.Join(parts, contextSeparator)
	for len(parts) > 1 && f.countTokens(out) > f.maxTokens {
		parts = parts[:len(parts)-1]
		out = strings.Join(parts, contextSeparator)
	}
	return out
}

// FormatExamples numbers each exemplar from 1.
func (f *Formatter) FormatExamples(examples []vectorstore.Passage) string {
	parts := make([]string, 0, len(examples))
	for i, ex := range examples {
		parts = append(parts, fmt.Sprintf("Example %d:\n%s", i+1, truncate(ex.Content, MaxExampleRunes)))
	}
	return strings.Join(parts, exampleSeparator)
}

func header(p vectorstore.Passage) string {
	source, ok := p.Metadata["source"]
	if !ok {
		source = p.SourceCollection
	}

	if title := p.Metadata["title"]; title != "" {
		return "[" + source + " - " + title + "]"
	}
	return "[" + source + "]"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
