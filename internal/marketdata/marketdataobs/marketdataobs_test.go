package marketdataobs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

type fakeMarketData struct {
	lookupErr error
	points    []types.PricePoint
}

func (f *fakeMarketData) QuoteHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	return f.points, nil
}

func (f *fakeMarketData) Lookup(ctx context.Context, symbol string) (types.InstrumentMeta, error) {
	if f.lookupErr != nil {
		return types.InstrumentMeta{}, f.lookupErr
	}
	return types.InstrumentMeta{Symbol: symbol, Name: symbol + " Inc", QuoteType: "EQUITY"}, nil
}

func TestLookupPassesThroughAndWarnsOnTransient(t *testing.T) {
	var buf bytes.Buffer
	if err := logger.InitWithWriter(&buf, logger.LogConfig{Level: "DEBUG", Format: "text", DetailedLogging: true}); err != nil {
		t.Fatalf("init: %v", err)
	}
	ctx := context.Background()

	md := Wrap(&fakeMarketData{})
	meta, err := md.Lookup(ctx, "AAPL")
	if err != nil || meta.QuoteType != "EQUITY" {
		t.Fatalf("Lookup = %+v, %v", meta, err)
	}
	if !strings.Contains(buf.String(), "Operation completed") || !strings.Contains(buf.String(), "resolved=true") {
		t.Errorf("expected a completed operation line, got %q", buf.String())
	}

	buf.Reset()
	md = Wrap(&fakeMarketData{lookupErr: types.NotFound("fake.Lookup", errors.New("no such symbol"))})
	if _, err := md.Lookup(ctx, "ZZZQ"); !types.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("unknown symbols should not warn, got %q", buf.String())
	}

	buf.Reset()
	md = Wrap(&fakeMarketData{lookupErr: types.Transient("fake.Lookup", errors.New("429"))})
	if _, err := md.Lookup(ctx, "MSFT"); types.KindOf(err) != types.KindTransient {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "symbol=MSFT") {
		t.Errorf("expected a warning for the provider failure, got %q", buf.String())
	}
}

func TestQuoteHistoryReportsBars(t *testing.T) {
	var buf bytes.Buffer
	if err := logger.InitWithWriter(&buf, logger.LogConfig{Level: "DEBUG", Format: "text", DetailedLogging: true}); err != nil {
		t.Fatalf("init: %v", err)
	}

	md := Wrap(&fakeMarketData{points: make([]types.PricePoint, 3)})
	now := time.Now()
	points, err := md.QuoteHistory(context.Background(), "AAPL", now.Add(-24*time.Hour), now)
	if err != nil || len(points) != 3 {
		t.Fatalf("QuoteHistory = %d points, %v", len(points), err)
	}
	if !strings.Contains(buf.String(), "bars=3") {
		t.Errorf("expected bar count in log, got %q", buf.String())
	}
}
