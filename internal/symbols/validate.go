package symbols

import (
	"context"
	"strings"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

// Resolver is the part of the market-data provider the validator needs.
type Resolver interface {
	Lookup(ctx context.Context, symbol string) (types.InstrumentMeta, error)
}

// Validator keeps only candidates the provider can resolve.
type Validator struct {
	resolver Resolver
	allowed  map[string]struct{}
}

// NewValidator accepts any quote type when allowedTypes is empty.
func NewValidator(r Resolver, allowedTypes []string) *Validator {
	v := &Validator{resolver: r}
	if len(allowedTypes) > 0 {
		v.allowed = make(map[string]struct{}, len(allowedTypes))
		for _, t := range allowedTypes {
			v.allowed[strings.ToUpper(t)] = struct{}{}
		}
	}
	return v
}

// Validate looks up each candidate once, in order. Lookup errors and empty
// metadata mark the candidate invalid; one failure never stops the rest.
// Cancellation of ctx ends the scan early and returns what was confirmed.
func (v *Validator) Validate(ctx context.Context, candidates []types.Symbol) []types.Symbol {
	valid := make([]types.Symbol, 0, len(candidates))
	for _, sym := range candidates {
		if ctx.Err() != nil {
			break
		}
		meta, err := v.resolver.Lookup(ctx, sym)
		if err != nil {
			logger.Debug(ctx, "Candidate rejected", "symbol", sym, "kind", types.KindOf(err).String(), "error", err)
			continue
		}
		if meta.Empty() {
			logger.Debug(ctx, "Candidate rejected", "symbol", sym, "reason", "empty metadata")
			continue
		}
		if v.allowed != nil {
			if _, ok := v.allowed[strings.ToUpper(meta.QuoteType)]; !ok {
				logger.Debug(ctx, "Candidate rejected", "symbol", sym, "reason", "quote type", "quote_type", meta.QuoteType)
				continue
			}
		}
		valid = append(valid, sym)
	}
	return valid
}
