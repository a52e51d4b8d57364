package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"stock-signal-bot/internal/llm"
	"stock-signal-bot/internal/types"
)

const DefaultModel = "gpt-4o-mini"

type Params struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// New builds a generator on any OpenAI-compatible chat endpoint.
func New(ctx context.Context, p Params) (*llm.ChatGenerator, error) {
	if p.APIKey == "" {
		return nil, types.NewError(types.KindConfig, "openai.New", errors.New("OPENAI_API_KEY missing"))
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}

	cfg := &openai.ChatModelConfig{
		APIKey:  p.APIKey,
		BaseURL: p.BaseURL,
		Model:   p.Model,
		Timeout: p.Timeout,
	}
	if p.MaxTokens > 0 {
		maxTokens := p.MaxTokens
		cfg.MaxTokens = &maxTokens
	}

	cm, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return llm.NewChatGenerator("openai", cm), nil
}
