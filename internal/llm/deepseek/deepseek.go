package deepseek

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"

	"stock-signal-bot/internal/llm"
	"stock-signal-bot/internal/types"
)

const DefaultModel = "deepseek-chat"

type Params struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

func New(ctx context.Context, p Params) (*llm.ChatGenerator, error) {
	if p.APIKey == "" {
		return nil, types.NewError(types.KindConfig, "deepseek.New", errors.New("DEEPSEEK_API_KEY missing"))
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}

	cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		APIKey:    p.APIKey,
		BaseURL:   p.BaseURL,
		Model:     p.Model,
		MaxTokens: p.MaxTokens,
		Timeout:   p.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create deepseek chat model: %w", err)
	}
	return llm.NewChatGenerator("deepseek", cm), nil
}
