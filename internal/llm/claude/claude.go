package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

const (
	DefaultEndpoint = "https://api.anthropic.com"
	DefaultModel    = "claude-3-5-haiku-latest"
	apiVersion      = "2023-06-01"
)

type Params struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// Generator calls the Anthropic Messages API.
type Generator struct {
	client *resty.Client
	model  string
}

var _ interfaces.Generator = (*Generator)(nil)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func New(p Params) (*Generator, error) {
	if p.APIKey == "" {
		return nil, types.NewError(types.KindConfig, "claude.New", errors.New("CLAUDE_API_KEY missing"))
	}
	if p.Endpoint == "" {
		p.Endpoint = DefaultEndpoint
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(p.Endpoint, "/")).
		SetTimeout(p.Timeout).
		SetHeader("x-api-key", p.APIKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("Content-Type", "application/json")

	return &Generator{client: c, model: p.Model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string, cfg types.GenConfig) (string, error) {
	const op = "claude.Generate"

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	var out response
	var apiErr errorBody
	start := time.Now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(request{
			Model:       g.model,
			MaxTokens:   maxTokens,
			Temperature: cfg.Temperature,
			Messages:    []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return "", types.Transient(op, err)
	}

	logger.Debug(ctx, "Received response from Claude",
		"status_code", resp.StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.IsError() {
		err := fmt.Errorf("claude http %d: %s: %s", resp.StatusCode(), apiErr.Error.Type, apiErr.Error.Message)
		switch status := resp.StatusCode(); {
		case status == http.StatusTooManyRequests, status >= 500:
			return "", types.Transient(op, err)
		case status == http.StatusUnauthorized, status == http.StatusForbidden:
			return "", types.NewError(types.KindConfig, op, err)
		default:
			return "", types.Policy(op, err)
		}
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
