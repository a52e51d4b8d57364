package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

// Yahoo is the Yahoo Finance provider backed by finance-go.
type Yahoo struct{}

var _ interfaces.MarketData = (*Yahoo)(nil)

// NewYahoo installs an HTTP client with the given timeout for all finance-go
// calls. finance-go has no per-request context, so the client timeout is the
// request-level bound.
func NewYahoo(timeout time.Duration) *Yahoo {
	finance.SetHTTPClient(&http.Client{Timeout: timeout})
	return &Yahoo{}
}

// QuoteHistory returns daily bars in [from, to], oldest first.
func (y *Yahoo) QuoteHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	const op = "yahoo.QuoteHistory"
	if err := ctx.Err(); err != nil {
		return nil, types.Transient(op, err)
	}

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: datetime.OneDay,
	})

	var points []types.PricePoint
	for iter.Next() {
		bar := iter.Bar()
		points = append(points, types.PricePoint{
			Time:  time.Unix(int64(bar.Timestamp), 0),
			Open:  bar.Open,
			Close: bar.Close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, classify(op, symbol, err)
	}
	return points, nil
}

// Lookup resolves instrument metadata; an unknown symbol is NotFound.
func (y *Yahoo) Lookup(ctx context.Context, symbol string) (types.InstrumentMeta, error) {
	const op = "yahoo.Lookup"
	if err := ctx.Err(); err != nil {
		return types.InstrumentMeta{}, types.Transient(op, err)
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return types.InstrumentMeta{}, classify(op, symbol, err)
	}
	if q == nil {
		return types.InstrumentMeta{}, types.NotFound(op, fmt.Errorf("no quote for %s", symbol))
	}

	return types.InstrumentMeta{
		Symbol:    q.Symbol,
		Name:      q.ShortName,
		QuoteType: string(q.QuoteType),
		Exchange:  q.FullExchangeName,
	}, nil
}

// classify maps provider failures onto error kinds. Yahoo reports unknown
// symbols in the error text, everything else is treated as retryable.
func classify(op, symbol string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "no data found"),
		strings.Contains(msg, "delisted"):
		return types.NotFound(op, fmt.Errorf("%s: %w", symbol, err))
	default:
		return types.Transient(op, fmt.Errorf("%s: %w", symbol, err))
	}
}
