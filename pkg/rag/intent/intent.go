// Package intent classifies a user message into one of a closed set of intents.
package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Intent string

const (
	Crisis    Intent = "crisis"
	Factual   Intent = "factual"
	Exercise  Intent = "exercise"
	Stuck     Intent = "stuck"
	Cognitive Intent = "cognitive"
	General   Intent = "general"
)

// Strategy names, matching the INTENT_STRATEGY config values.
const (
	StrategyKeyword = "keyword"
	StrategyLLM     = "llm"
)

var ErrUnknownIntent = errors.New("unknown intent")

var ordered = []Intent{Crisis, Factual, Exercise, Stuck, Cognitive, General}

// All returns every intent in enumeration order. Keyword ties resolve to the
// earliest intent in this order.
func All() []Intent {
	out := make([]Intent, len(ordered))
	copy(out, ordered)
	return out
}

// ParseIntent validates a raw label at the system boundary.
func ParseIntent(raw string) (Intent, error) {
	label := Intent(strings.ToLower(strings.TrimSpace(raw)))
	for _, i := range ordered {
		if i == label {
			return i, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, raw)
}

func (i Intent) String() string {
	return string(i)
}

// Classification is the outcome of one classify call.
type Classification struct {
	Intent   Intent
	Strategy string
	// Fallback is set when the delegated strategy could not decide and the
	// keyword strategy answered instead.
	Fallback bool
}

type Classifier interface {
	Classify(ctx context.Context, text string) Classification
}
