package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/types"
)

// Reference picks the two prices a percentage change is measured between.
type Reference interface {
	Name() string
	Prices(ctx context.Context, a *Accessor, symbol string, now time.Time) (ref, last decimal.Decimal, err error)
}

// SessionOpen compares today's opening price with the current price.
type SessionOpen struct{}

func (SessionOpen) Name() string { return "session_open" }

func (SessionOpen) Prices(ctx context.Context, a *Accessor, symbol string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	bar, err := a.barOn(ctx, symbol, now)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return bar.Open, bar.Close, nil
}

// TwoDayClose compares the previous session's close with the latest close.
type TwoDayClose struct{}

func (TwoDayClose) Name() string { return "two_day_close" }

func (TwoDayClose) Prices(ctx context.Context, a *Accessor, symbol string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	points, err := a.history(ctx, symbol, now.AddDate(0, 0, -lookbackDays), now)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if len(points) < 2 {
		return decimal.Zero, decimal.Zero, types.NotFound("marketdata.TwoDayClose",
			fmt.Errorf("%s: need two sessions, have %d", symbol, len(points)))
	}
	return points[len(points)-2].Close, points[len(points)-1].Close, nil
}

// ReferenceByName resolves the filter.reference config value.
func ReferenceByName(name string) (Reference, error) {
	switch name {
	case "", "session_open":
		return SessionOpen{}, nil
	case "two_day_close":
		return TwoDayClose{}, nil
	default:
		return nil, types.NewError(types.KindConfig, "marketdata.ReferenceByName",
			fmt.Errorf("unknown price reference %q", name))
	}
}
