package filter

import (
	"context"
	"fmt"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

// ChangeSource yields the percentage change for one symbol.
type ChangeSource interface {
	PriceChangePct(ctx context.Context, symbol string) (types.PriceChange, error)
}

// Filter keeps symbols whose change is at or above thresholdPct, preserving
// input order. Symbols without data (NotFound, Malformed) or refused by the
// provider are dropped silently. A transient failure stops the scan and is
// returned with the symbols kept so far; the caller aborts the cycle.
func Filter(ctx context.Context, src ChangeSource, symbols []types.Symbol, thresholdPct float64) ([]types.PriceChange, error) {
	kept := make([]types.PriceChange, 0, len(symbols))

	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return kept, types.Transient("filter.Filter", err)
		}
		pc, err := src.PriceChangePct(ctx, sym)
		if err != nil {
			kind := types.KindOf(err)
			if kind == types.KindTransient {
				return kept, fmt.Errorf("filter %s: %w", sym, err)
			}
			logger.Debug(ctx, "Symbol dropped from filter", "symbol", sym, "kind", kind.String(), "error", err)
			continue
		}
		if pc.Pct >= thresholdPct {
			kept = append(kept, pc)
		} else {
			logger.Debug(ctx, "Below threshold", "symbol", sym, "pct", pc.Pct, "threshold", thresholdPct)
		}
	}
	return kept, nil
}
