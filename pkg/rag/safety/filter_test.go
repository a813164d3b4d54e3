package safety

import (
	"testing"

	"mindcare-rag-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestCheckCrisis(t *testing.T) {
	f := NewFilter(nil, "")

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"plain phrase", "I want to kill myself", true},
		{"upper case", "I AM SUICIDAL", true},
		{"embedded in sentence", "sometimes i think everyone is better off dead without me", true},
		{"hyphenated", "I keep thinking about self-harm", true},
		{"typographic apostrophe", "I don’t want to live anymore", true},
		{"substring of longer word", "suicideprevention hotline numbers", true},
		{"no crisis", "I feel a bit anxious about my exam", false},
		{"empty", "", false},
		{"intent crisis keyword only", "I'm having a panic attack", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isCrisis, response := f.CheckCrisis(tt.input)
			assert.Equal(t, tt.expected, isCrisis)
			if tt.expected {
				assert.Equal(t, constant.CrisisResponse, response)
			} else {
				assert.Empty(t, response)
			}
		})
	}
}

func TestCheckCrisis_EveryDefaultPhrase(t *testing.T) {
	f := NewFilter(nil, "")
	for _, phrase := range DefaultCrisisPhrases {
		isCrisis, _ := f.CheckCrisis("prefix " + phrase + " suffix")
		assert.True(t, isCrisis, phrase)
	}
}

func TestNewFilter_CustomPhrases(t *testing.T) {
	f := NewFilter([]string{"  ", "Red Flag"}, "call someone")

	isCrisis, response := f.CheckCrisis("this is a red flag")
	assert.True(t, isCrisis)
	assert.Equal(t, "call someone", response)

	isCrisis, _ = f.CheckCrisis("I want to die")
	assert.False(t, isCrisis)
}
