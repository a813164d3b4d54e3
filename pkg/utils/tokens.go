package utils

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEncoding is the encoding used for every token count in the service.
const TokenEncoding = "cl100k_base"

// charsPerToken is the estimate used when the encoder cannot be loaded.
const charsPerToken = 4

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

func loadEncoder() *tiktoken.Tiktoken {
	encoderOnce.Do(func() {
		tok, err := tiktoken.GetEncoding(TokenEncoding)
		if err == nil {
			encoder = tok
		}
	})
	return encoder
}

// CountTokens counts cl100k_base tokens, or estimates them at four runes per
// token when the encoder is unavailable.
func CountTokens(text string) int {
	if tok := loadEncoder(); tok != nil {
		return len(tok.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

func EstimateTokens(text string) int {
	n := len([]rune(text))
	return (n + charsPerToken - 1) / charsPerToken
}

// SplitTokens windows text into chunks of maxTokens tokens with overlap tokens
// shared between neighbors. Falls back to SplitText on rune counts when the
// encoder is unavailable.
func SplitTokens(text string, maxTokens, overlap int) []string {
	if text == "" || maxTokens <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= maxTokens {
		overlap = 0
	}

	tok := loadEncoder()
	if tok == nil {
		return SplitText(text, maxTokens*charsPerToken, overlap*charsPerToken)
	}

	var out []string
	tokens := tok.Encode(text, nil, nil)
	for i := 0; i < len(tokens); i += maxTokens - overlap {
		end := min(i+maxTokens, len(tokens))
		out = append(out, tok.Decode(tokens[i:end]))
		if end == len(tokens) {
			break
		}
	}
	return out
}
