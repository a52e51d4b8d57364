package interfaces

import (
	"context"

	"stock-signal-bot/internal/types"
)

type Generator interface {
	Generate(ctx context.Context, prompt string, cfg types.GenConfig) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) (types.SentimentLabel, error)
}
