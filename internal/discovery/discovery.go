package discovery

import (
	"context"
	"fmt"
	"strings"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

// Discoverer asks a text generator for candidate tickers.
type Discoverer struct {
	gen  interfaces.Generator
	role string
	cfg  types.GenConfig
}

func New(gen interfaces.Generator, role string, cfg types.GenConfig) *Discoverer {
	return &Discoverer{gen: gen, role: role, cfg: cfg}
}

// BuildPrompt joins the role instruction, the strategy query and any known
// symbols into a single prompt.
func BuildPrompt(role, query string, known []types.Symbol) string {
	var b strings.Builder
	if role = strings.TrimSpace(role); role != "" {
		b.WriteString(role)
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(query))
	if len(known) > 0 {
		fmt.Fprintf(&b, "\nConsider these symbols: %s", strings.Join(known, ", "))
	}
	return b.String()
}

// Discover issues one generation request. The text is returned as-is; empty
// or rambling output is valid and simply yields no candidates downstream.
// Generator errors are passed through with their kind.
func (d *Discoverer) Discover(ctx context.Context, query string, known []types.Symbol) (string, error) {
	out, err := d.gen.Generate(ctx, BuildPrompt(d.role, query, known), d.cfg)
	if err != nil {
		return "", fmt.Errorf("discover: %w", err)
	}
	return out, nil
}
