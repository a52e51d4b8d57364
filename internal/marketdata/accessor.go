package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

// lookbackDays covers weekends and a holiday when asking for recent sessions.
const lookbackDays = 7

// Accessor derives opening, last and change figures from a provider. Nothing
// is cached: every call goes back to the provider.
type Accessor struct {
	provider interfaces.MarketData
	ref      Reference
	loc      *time.Location
	limiter  *rate.Limiter
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Accessor)

// WithRateLimit bounds provider calls per second; zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(a *Accessor) {
		if perSecond > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(a *Accessor) { a.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(a *Accessor) { a.now = now }
}

func NewAccessor(provider interfaces.MarketData, ref Reference, loc *time.Location, opts ...Option) *Accessor {
	if ref == nil {
		ref = SessionOpen{}
	}
	if loc == nil {
		loc = time.UTC
	}
	a := &Accessor{
		provider: provider,
		ref:      ref,
		loc:      loc,
		timeout:  15 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Accessor) Reference() Reference { return a.ref }

func (a *Accessor) history(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, types.Transient("marketdata.history", err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.provider.QuoteHistory(ctx, symbol, from, to)
}

// Lookup forwards to the provider under the same throttle and timeout.
func (a *Accessor) Lookup(ctx context.Context, symbol string) (types.InstrumentMeta, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return types.InstrumentMeta{}, types.Transient("marketdata.Lookup", err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.provider.Lookup(ctx, symbol)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (a *Accessor) barOn(ctx context.Context, symbol string, date time.Time) (types.PricePoint, error) {
	date = date.In(a.loc)
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, a.loc)
	points, err := a.history(ctx, symbol, start, start.AddDate(0, 0, 1))
	if err != nil {
		return types.PricePoint{}, err
	}
	for i := len(points) - 1; i >= 0; i-- {
		if sameDay(points[i].Time.In(a.loc), date) {
			return points[i], nil
		}
	}
	return types.PricePoint{}, types.NotFound("marketdata.barOn",
		fmt.Errorf("%s: no session on %s", symbol, start.Format("2006-01-02")))
}

// OpeningPrice is the first traded price of the session on date.
func (a *Accessor) OpeningPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	bar, err := a.barOn(ctx, symbol, date)
	if err != nil {
		return decimal.Zero, err
	}
	return bar.Open, nil
}

// LastPrice is the close of the most recent bar, which during a session is
// the current price.
func (a *Accessor) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	now := a.now()
	points, err := a.history(ctx, symbol, now.AddDate(0, 0, -lookbackDays), now)
	if err != nil {
		return decimal.Zero, err
	}
	if len(points) == 0 {
		return decimal.Zero, types.NotFound("marketdata.LastPrice", fmt.Errorf("%s: no recent bars", symbol))
	}
	return points[len(points)-1].Close, nil
}

// PriceChangePct measures the change under the configured reference. A
// missing or non-positive reference is NotFound, never a zero change.
func (a *Accessor) PriceChangePct(ctx context.Context, symbol string) (types.PriceChange, error) {
	now := a.now()
	ref, last, err := a.ref.Prices(ctx, a, symbol, now)
	if err != nil {
		return types.PriceChange{}, err
	}
	if !ref.IsPositive() {
		return types.PriceChange{}, types.NotFound("marketdata.PriceChangePct",
			fmt.Errorf("%s: reference price %s is not positive", symbol, ref))
	}
	pct := last.Sub(ref).Div(ref).Mul(decimal.NewFromInt(100))
	return types.PriceChange{
		Symbol:    symbol,
		Pct:       pct.InexactFloat64(),
		Reference: ref,
		Last:      last,
		At:        now,
	}, nil
}
