package noop

import (
	"context"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

// Generator is the fallback used when no LLM provider is configured. It
// produces no text, so a cycle finds no candidates.
type Generator struct{}

var _ interfaces.Generator = (*Generator)(nil)

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(ctx context.Context, prompt string, cfg types.GenConfig) (string, error) {
	logger.Debug(ctx, "Noop generator called - returns empty text", "prompt_length", len(prompt))
	return "", nil
}

// Classifier always answers NEUTRAL, which keeps the sentiment gate closed.
type Classifier struct{}

var _ interfaces.Classifier = (*Classifier)(nil)

func (Classifier) Classify(ctx context.Context, text string) (types.SentimentLabel, error) {
	return types.Neutral, nil
}
