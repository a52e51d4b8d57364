package sentiment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

const classifyPrompt = `Classify the overall market sentiment of the following text.
Answer with exactly one word: POSITIVE, NEGATIVE or NEUTRAL.

Text:
%s`

// maxClassifyInput bounds how much text is sent for classification.
const maxClassifyInput = 4000

// LLMClassifier asks a text generator for a one-word sentiment label.
type LLMClassifier struct {
	gen interfaces.Generator
}

var _ interfaces.Classifier = (*LLMClassifier)(nil)

func NewLLMClassifier(gen interfaces.Generator) *LLMClassifier {
	return &LLMClassifier{gen: gen}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (types.SentimentLabel, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Neutral, nil
	}
	text = truncate(text, maxClassifyInput)

	out, err := c.gen.Generate(ctx, fmt.Sprintf(classifyPrompt, text), types.GenConfig{MaxTokens: 5, Temperature: 0})
	if err != nil {
		return types.Neutral, fmt.Errorf("classify: %w", err)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return types.Neutral, nil
	}
	return types.ParseSentiment(fields[0]), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
