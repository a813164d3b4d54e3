package intent

import (
	"context"
	"strings"

	"mindcare-rag-be/internal/constant"
	"mindcare-rag-be/internal/pkg/logger"
	"mindcare-rag-be/pkg/llm"
)

const moduleName = "intent"

// DelegatedClassifier asks the generation service for a one-word label and
// hands the text to fallback whenever the answer is unusable. A nil fallback
// means keyword scoring.
type DelegatedClassifier struct {
	llmProvider llm.LLMProvider
	fallback    Classifier
	template    string
	logger      logger.ILogger
}

func NewDelegatedClassifier(llmProvider llm.LLMProvider, fallback Classifier, log logger.ILogger) *DelegatedClassifier {
	if fallback == nil {
		fallback = NewKeywordClassifier(nil)
	}
	return &DelegatedClassifier{
		llmProvider: llmProvider,
		fallback:    fallback,
		template:    constant.IntentClassificationPromptV1,
		logger:      log,
	}
}

func (c *DelegatedClassifier) Classify(ctx context.Context, text string) Classification {
	prompt := strings.ReplaceAll(c.template, "{message}", text)

	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0), llm.WithMaxTokens(8))
	if err != nil {
		c.logger.Warn(moduleName, "Delegated classification failed, using keywords", map[string]interface{}{
			"error": err.Error(),
		})
		return c.fallbackFor(ctx, text)
	}

	label := firstWord(response)
	in, err := ParseIntent(label)
	if err != nil {
		c.logger.Warn(moduleName, "Delegated classifier returned an unknown label, using keywords", map[string]interface{}{
			"raw": truncate(response, 40),
		})
		return c.fallbackFor(ctx, text)
	}

	return Classification{Intent: in, Strategy: StrategyLLM}
}

func (c *DelegatedClassifier) fallbackFor(ctx context.Context, text string) Classification {
	res := c.fallback.Classify(ctx, text)
	res.Strategy = StrategyLLM
	res.Fallback = true
	return res
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!:;*\"'`")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
