// Package static holds deterministic generators and classifiers for tests
// and dry runs.
package static

import (
	"context"
	"sync"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

// Generator replays Replies in order, then keeps returning the last one.
type Generator struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Prompts []string
}

var _ interfaces.Generator = (*Generator)(nil)

func NewGenerator(replies ...string) *Generator {
	return &Generator{Replies: replies}
}

func (g *Generator) Generate(ctx context.Context, prompt string, cfg types.GenConfig) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Replies) == 0 {
		return "", nil
	}
	i := len(g.Prompts) - 1
	if i >= len(g.Replies) {
		i = len(g.Replies) - 1
	}
	return g.Replies[i], nil
}

// Calls is the number of Generate invocations so far.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Prompts)
}

// Classifier returns Label for any text and records what it was asked.
type Classifier struct {
	Label types.SentimentLabel
	Err   error
	Texts []string
}

var _ interfaces.Classifier = (*Classifier)(nil)

func NewClassifier(label types.SentimentLabel) *Classifier {
	return &Classifier{Label: label}
}

func (c *Classifier) Classify(ctx context.Context, text string) (types.SentimentLabel, error) {
	c.Texts = append(c.Texts, text)
	if c.Err != nil {
		return types.Neutral, c.Err
	}
	return c.Label, nil
}
