package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

// ChatModel is the eino chat-model surface the generator needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatGenerator adapts an eino chat model to interfaces.Generator.
type ChatGenerator struct {
	name  string
	model ChatModel
}

var _ interfaces.Generator = (*ChatGenerator)(nil)

func NewChatGenerator(name string, m ChatModel) *ChatGenerator {
	return &ChatGenerator{name: name, model: m}
}

func (g *ChatGenerator) Name() string { return g.name }

// Generate sends prompt as a single user message. An empty reply is not an
// error: callers treat it as text with no candidates.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string, cfg types.GenConfig) (string, error) {
	opts := []model.Option{model.WithTemperature(cfg.Temperature)}
	if cfg.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(cfg.MaxTokens))
	}

	msg, err := g.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, opts...)
	if err != nil {
		return "", classify(g.name+".Generate", err)
	}
	if msg == nil {
		return "", nil
	}
	return strings.TrimSpace(msg.Content), nil
}

// classify treats rate limits, timeouts and server errors as transient and
// authentication failures as configuration errors.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.Transient(op, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "invalid api key"), strings.Contains(msg, "unauthorized"):
		return types.NewError(types.KindConfig, op, err)
	case strings.Contains(msg, "400"), strings.Contains(msg, "content_filter"):
		return types.Policy(op, err)
	default:
		return types.Transient(op, err)
	}
}
