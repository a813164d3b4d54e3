package prompt

import (
	"strings"

	"mindcare-rag-be/internal/constant"
)

// MaxHistoryExchanges caps how much of a conversation the model sees.
const MaxHistoryExchanges = 6

// Exchange is one user turn and the reply it got.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Input carries the already formatted sections of a prompt.
type Input struct {
	Context  string
	Examples string
	History  []Exchange
	Query    string
}

// Builder fills the system template. Substitution is a single pass, so
// placeholders typed by the user are left as they are.
type Builder struct {
	template string
}

// NewBuilder uses SystemPromptV1 when template is empty.
func NewBuilder(template string) *Builder {
	if template == "" {
		template = constant.SystemPromptV1
	}
	return &Builder{template: template}
}

func (b *Builder) Build(in Input) string {
	context := in.Context
	if context == "" {
		context = constant.NoContextPlaceholder
	}

	r := strings.NewReplacer(
		"{context}", context,
		"{few_shot_examples}", in.Examples,
		"{history}", FormatHistory(in.History),
		"{user_query}", in.Query,
	)
	return r.Replace(b.template)
}

// FormatHistory renders the last MaxHistoryExchanges exchanges as
// "User: ..." / "You: ..." lines.
func FormatHistory(history []Exchange) string {
	if len(history) == 0 {
		return constant.NoHistoryPlaceholder
	}
	if len(history) > MaxHistoryExchanges {
		history = history[len(history)-MaxHistoryExchanges:]
	}

	lines := make([]string, 0, len(history)*2)
	for _, ex := range history {
		lines = append(lines, "User: "+ex.User, "You: "+ex.Assistant)
	}
	return strings.Join(lines, "\n")
}
