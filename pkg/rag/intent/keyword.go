package intent

import (
	"context"
	"strings"
)

// Keywords maps an intent to the phrases that vote for it.
type Keywords map[Intent][]string

// DefaultKeywords returns a fresh copy of the built-in keyword table.
// General has no keywords; it wins only when nothing else scores.
func DefaultKeywords() Keywords {
	return Keywords{
		Crisis: {
			"panic", "can't breathe", "overwhelming", "out of control",
			"emergency", "urgent", "desperate", "falling apart",
		},
		Factual: {
			"what is", "what are", "symptoms", "causes", "treatment",
			"medication", "define", "explain", "tell me about",
		},
		Exercise: {
			"worksheet", "exercise", "practice", "activity", "try",
			"technique", "tool", "help me", "how do i",
		},
		Stuck: {
			"stuck", "can't change", "nothing works", "pointless",
			"values", "meaning", "purpose", "acceptance",
		},
		Cognitive: {
			"thoughts", "thinking", "beliefs", "automatic", "distortion",
			"negative", "mindset", "perspective",
		},
	}
}

type KeywordClassifier struct {
	keywords Keywords
}

func NewKeywordClassifier(keywords Keywords) *KeywordClassifier {
	if keywords == nil {
		keywords = DefaultKeywords()
	}

	lowered := make(Keywords, len(keywords))
	for in, phrases := range keywords {
		for _, p := range phrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				lowered[in] = append(lowered[in], p)
			}
		}
	}
	return &KeywordClassifier{keywords: lowered}
}

// Scores counts, per intent, how many of its keywords occur in text. Each
// keyword counts at most once.
func (c *KeywordClassifier) Scores(text string) map[Intent]int {
	lower := strings.ToLower(text)
	scores := make(map[Intent]int, len(ordered))
	for _, in := range ordered {
		count := 0
		for _, kw := range c.keywords[in] {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		scores[in] = count
	}
	return scores
}

func (c *KeywordClassifier) Classify(_ context.Context, text string) Classification {
	return Classification{Intent: c.classify(text), Strategy: StrategyKeyword}
}

func (c *KeywordClassifier) classify(text string) Intent {
	scores := c.Scores(text)

	best, bestScore := General, 0
	for _, in := range ordered {
		if scores[in] > bestScore {
			best, bestScore = in, scores[in]
		}
	}
	return best
}
