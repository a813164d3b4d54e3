package prompt

import (
	"fmt"
	"strings"
	"testing"

	"mindcare-rag-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistory(t *testing.T) {
	many := make([]Exchange, 10)
	for i := range many {
		many[i] = Exchange{User: fmt.Sprintf("u%d", i), Assistant: fmt.Sprintf("a%d", i)}
	}

	tests := []struct {
		name    string
		history []Exchange
		want    string
	}{
		{name: "empty", history: nil, want: constant.NoHistoryPlaceholder},
		{name: "one", history: []Exchange{{User: "hi", Assistant: "hello"}}, want: "User: hi\nYou: hello"},
		{
			name:    "keeps last six",
			history: many,
			want:    "User: u4\nYou: a4\nUser: u5\nYou: a5\nUser: u6\nYou: a6\nUser: u7\nYou: a7\nUser: u8\nYou: a8\nUser: u9\nYou: a9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHistory(tt.history))
		})
	}
}

func TestFormatHistory_NeverMoreThanSix(t *testing.T) {
	for n := 0; n < 20; n++ {
		history := make([]Exchange, n)
		for i := range history {
			history[i] = Exchange{User: "q", Assistant: "a"}
		}
		got := strings.Count(FormatHistory(history), "User: ")
		assert.LessOrEqual(t, got, MaxHistoryExchanges)
	}
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("C={context}|E={few_shot_examples}|H={history}|Q={user_query}")

	tests := []struct {
		name string
		in   Input
		want string
	}{
		{
			name: "placeholders when empty",
			in:   Input{Query: "hello"},
			want: "C=" + constant.NoContextPlaceholder + "|E=|H=" + constant.NoHistoryPlaceholder + "|Q=hello",
		},
		{
			name: "all sections",
			in: Input{
				Context:  "[a]\nctx",
				Examples: "Example 1:\nex",
				History:  []Exchange{{User: "x", Assistant: "y"}},
				Query:    "q",
			},
			want: "C=[a]\nctx|E=Example 1:\nex|H=User: x\nYou: y|Q=q",
		},
		{
			name: "user braces are not expanded",
			in:   Input{Context: "ctx", Query: "what is {context}?"},
			want: "C=ctx|E=|H=" + constant.NoHistoryPlaceholder + "|Q=what is {context}?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Build(tt.in))
		})
	}
}

func TestBuilder_DefaultTemplate(t *testing.T) {
	out := NewBuilder("").Build(Input{Context: "CTX", Query: "QUERY"})

	assert.Contains(t, out, "CTX")
	assert.Contains(t, out, "QUERY")
	assert.NotContains(t, out, "{context}")
	assert.NotContains(t, out, "{user_query}")
	assert.NotContains(t, out, "{history}")
}
