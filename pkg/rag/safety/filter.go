// Package safety intercepts crisis language before any retrieval or generation happens.
package safety

import (
	"strings"

	"mindcare-rag-be/internal/constant"
)

// DefaultCrisisPhrases abort the pipeline on any single match.
var DefaultCrisisPhrases = []string{
	"suicide",
	"kill myself",
	"want to die",
	"end it all",
	"self-harm",
	"cut myself",
	"hurt myself",
	"end my life",
	"don't want to live",
	"better off dead",
	"suicidal",
}

var apostropheReplacer = strings.NewReplacer("’", "'", "‘", "'")

type Filter struct {
	phrases  []string
	response string
}

// NewFilter builds a filter over the given phrases. A nil phrase list uses
// DefaultCrisisPhrases and an empty response uses constant.CrisisResponse.
func NewFilter(phrases []string, response string) *Filter {
	if phrases == nil {
		phrases = DefaultCrisisPhrases
	}
	if response == "" {
		response = constant.CrisisResponse
	}

	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(normalize(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}

	return &Filter{phrases: lowered, response: response}
}

// CheckCrisis reports whether text contains any crisis phrase and, if so,
// returns the fixed crisis response.
func (f *Filter) CheckCrisis(text string) (bool, string) {
	input := normalize(text)
	for _, phrase := range f.phrases {
		if strings.Contains(input, phrase) {
			return true, f.response
		}
	}
	return false, ""
}

// Response returns the fixed crisis text.
func (f *Filter) Response() string {
	return f.response
}

func normalize(s string) string {
	return strings.ToLower(apostropheReplacer.Replace(s))
}
