package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/types"
)

type fakeProvider struct {
	bars  map[string][]types.PricePoint
	err   error
	calls int
}

func (f *fakeProvider) QuoteHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []types.PricePoint
	for _, p := range f.bars[symbol] {
		if !p.Time.Before(from) && !p.Time.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProvider) Lookup(ctx context.Context, symbol string) (types.InstrumentMeta, error) {
	return types.InstrumentMeta{Symbol: symbol, Name: symbol, QuoteType: "EQUITY"}, nil
}

func bar(day int, open, close string) types.PricePoint {
	return types.PricePoint{
		Time:  time.Date(2024, time.March, day, 13, 30, 0, 0, time.UTC),
		Open:  decimal.RequireFromString(open),
		Close: decimal.RequireFromString(close),
	}
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 12, 15, 0, 0, 0, time.UTC)
}

func TestPriceChangePctSessionOpen(t *testing.T) {
	p := &fakeProvider{bars: map[string][]types.PricePoint{
		"AAPL": {bar(11, "170", "171"), bar(12, "100", "101.2")},
	}}
	a := NewAccessor(p, SessionOpen{}, time.UTC, WithClock(fixedNow))

	pc, err := a.PriceChangePct(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("PriceChangePct: %v", err)
	}
	if pc.Pct < 1.199 || pc.Pct > 1.201 {
		t.Errorf("expected 1.2%%, got %f", pc.Pct)
	}
	if !pc.Reference.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected reference 100, got %s", pc.Reference)
	}
}

func TestPriceChangePctNoSessionYet(t *testing.T) {
	p := &fakeProvider{bars: map[string][]types.PricePoint{
		"AAPL": {bar(11, "170", "171")},
	}}
	a := NewAccessor(p, SessionOpen{}, time.UTC, WithClock(fixedNow))

	_, err := a.PriceChangePct(context.Background(), "AAPL")
	if !types.IsNotFound(err) {
		t.Fatalf("expected NotFound before the session has data, got %v", err)
	}
}

func TestPriceChangePctZeroReference(t *testing.T) {
	p := &fakeProvider{bars: map[string][]types.PricePoint{
		"AAPL": {bar(12, "0", "5")},
	}}
	a := NewAccessor(p, SessionOpen{}, time.UTC, WithClock(fixedNow))

	if _, err := a.PriceChangePct(context.Background(), "AAPL"); !types.IsNotFound(err) {
		t.Fatalf("expected NotFound for zero reference, got %v", err)
	}
}

func TestPriceChangePctTwoDayClose(t *testing.T) {
	p := &fakeProvider{bars: map[string][]types.PricePoint{
		"SPY": {bar(8, "1", "1"), bar(11, "400", "400"), bar(12, "401", "404")},
	}}
	a := NewAccessor(p, TwoDayClose{}, time.UTC, WithClock(fixedNow))

	pc, err := a.PriceChangePct(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("PriceChangePct: %v", err)
	}
	if pc.Pct < 0.999 || pc.Pct > 1.001 {
		t.Errorf("expected 1%%, got %f", pc.Pct)
	}
}

func TestLastPriceAndOpeningPrice(t *testing.T) {
	p := &fakeProvider{bars: map[string][]types.PricePoint{
		"QQQ": {bar(11, "300", "305"), bar(12, "306", "310")},
	}}
	a := NewAccessor(p, SessionOpen{}, time.UTC, WithClock(fixedNow))

	last, err := a.LastPrice(context.Background(), "QQQ")
	if err != nil || !last.Equal(decimal.NewFromInt(310)) {
		t.Errorf("LastPrice = %s, %v; want 310", last, err)
	}
	open, err := a.OpeningPrice(context.Background(), "QQQ", fixedNow().AddDate(0, 0, -1))
	if err != nil || !open.Equal(decimal.NewFromInt(300)) {
		t.Errorf("OpeningPrice = %s, %v; want 300", open, err)
	}
	if _, err := a.LastPrice(context.Background(), "NOPE"); !types.IsNotFound(err) {
		t.Errorf("expected NotFound for unknown symbol, got %v", err)
	}
}

func TestProviderErrorsPassThrough(t *testing.T) {
	p := &fakeProvider{err: types.Transient("fake", errors.New("timeout"))}
	a := NewAccessor(p, SessionOpen{}, time.UTC, WithClock(fixedNow), WithRateLimit(100))

	_, err := a.PriceChangePct(context.Background(), "AAPL")
	if types.KindOf(err) != types.KindTransient {
		t.Errorf("expected transient error, got %v", err)
	}
}

func TestReferenceByName(t *testing.T) {
	for _, name := range []string{"session_open", "two_day_close"} {
		r, err := ReferenceByName(name)
		if err != nil || r.Name() != name {
			t.Errorf("ReferenceByName(%q) = %v, %v", name, r, err)
		}
	}
	if _, err := ReferenceByName("weekly"); types.KindOf(err) != types.KindConfig {
		t.Errorf("expected config error, got %v", err)
	}
}
