package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTokens(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Name the feeling and let it pass. ", 200))

	tests := []struct {
		name      string
		text      string
		maxTokens int
		overlap   int
		wantNone  bool
		wantMulti bool
	}{
		{name: "empty", text: "", maxTokens: 10, wantNone: true},
		{name: "zero window", text: text, maxTokens: 0, wantNone: true},
		{name: "fits in one window", text: "short note", maxTokens: 50, overlap: 5},
		{name: "long text", text: text, maxTokens: 100, overlap: 10, wantMulti: true},
		{name: "overlap too large is dropped", text: text, maxTokens: 100, overlap: 100, wantMulti: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTokens(tt.text, tt.maxTokens, tt.overlap)
			if tt.wantNone {
				assert.Empty(t, got)
				return
			}

			require.NotEmpty(t, got)
			assert.Equal(t, tt.wantMulti, len(got) > 1)
			assert.True(t, strings.HasPrefix(tt.text, got[0]))
			assert.True(t, strings.HasSuffix(tt.text, got[len(got)-1]))
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
}
