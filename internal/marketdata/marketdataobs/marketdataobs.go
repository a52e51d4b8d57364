package marketdataobs

import (
	"context"
	"time"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

type observableMarketData struct {
	md interfaces.MarketData
}

var _ interfaces.MarketData = (*observableMarketData)(nil)

// Wrap adds a span and debug lines around every provider call.
func Wrap(md interfaces.MarketData) interfaces.MarketData {
	return &observableMarketData{md: md}
}

func (o *observableMarketData) QuoteHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	op := logger.StartOperation(ctx, "marketdata.QuoteHistory",
		"symbol", symbol,
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
	)

	points, err := o.md.QuoteHistory(op.GetContext(), symbol, from, to)
	if err != nil {
		if types.IsNotFound(err) {
			op.End("bars", 0)
		} else {
			op.EndWithError(err, "kind", types.KindOf(err).String())
		}
		return nil, err
	}

	op.End("bars", len(points))
	return points, nil
}

func (o *observableMarketData) Lookup(ctx context.Context, symbol string) (types.InstrumentMeta, error) {
	op := logger.StartOperation(ctx, "marketdata.Lookup", "symbol", symbol)

	meta, err := o.md.Lookup(op.GetContext(), symbol)
	if err != nil {
		if types.KindOf(err) == types.KindTransient {
			logger.WarnSkip(op.GetContext(), 1, "Symbol lookup failed, treating as invalid", "symbol", symbol, "error", err)
		}
		op.End("resolved", false, "kind", types.KindOf(err).String())
		return meta, err
	}

	op.End("resolved", true, "name", meta.Name, "quote_type", meta.QuoteType)
	return meta, nil
}
