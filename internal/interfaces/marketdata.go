package interfaces

import (
	"context"
	"time"

	"stock-signal-bot/internal/types"
)

// MarketData is the raw quote provider. Implementations return
// types.KindNotFound errors for unknown symbols or empty ranges.
type MarketData interface {
	QuoteHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error)
	Lookup(ctx context.Context, symbol string) (types.InstrumentMeta, error)
}
