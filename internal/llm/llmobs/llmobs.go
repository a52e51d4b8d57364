package llmobs

import (
	"context"
	"time"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/trace"
	"stock-signal-bot/internal/types"
)

// observableGenerator wraps a Generator with observability (logging & tracing)
type observableGenerator struct {
	gen interfaces.Generator
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(gen interfaces.Generator) interfaces.Generator {
	return &observableGenerator{gen: gen}
}

func (og *observableGenerator) Generate(ctx context.Context, prompt string, cfg types.GenConfig) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()

	// Skip(1) reports the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting generation",
		"prompt_length", len(prompt),
		"max_tokens", cfg.MaxTokens,
		"temperature", cfg.Temperature,
	)

	start := time.Now()
	out, err := og.gen.Generate(ctx, prompt, cfg)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Generation failed", err,
			"kind", types.KindOf(err).String(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Generation received",
		"output_length", len(out),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

type observableClassifier struct {
	c interfaces.Classifier
}

var _ interfaces.Classifier = (*observableClassifier)(nil)

// WrapClassifier wraps a sentiment classifier with observability middleware
func WrapClassifier(c interfaces.Classifier) interfaces.Classifier {
	return &observableClassifier{c: c}
}

func (oc *observableClassifier) Classify(ctx context.Context, text string) (types.SentimentLabel, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Classify")
	defer span.End()

	label, err := oc.c.Classify(ctx, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sentiment classification failed", err, "text_length", len(text))
		return label, err
	}

	logger.InfoSkip(ctx, 1, "Sentiment classified", "label", label, "text_length", len(text))
	return label, nil
}
