package risk

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCanAfford(t *testing.T) {
	budget := d("275")
	tests := []struct {
		name        string
		price, cash string
		want        bool
	}{
		{"cheap and funded", "189.50", "10000", true},
		{"price equals budget", "275", "275", true},
		{"price above budget with plenty of cash", "275.01", "1000000", false},
		{"cash below budget with cheap price", "1", "274.99", false},
		{"both fail", "500", "10", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAfford(d(tt.price), d(tt.cash), budget); got != tt.want {
				t.Errorf("CanAfford(%s, %s, %s) = %v, want %v", tt.price, tt.cash, budget, got, tt.want)
			}
		})
	}
}

func TestCanAffordPropertySweep(t *testing.T) {
	budget := d("100")
	for p := 0; p <= 300; p += 7 {
		for c := 0; c <= 300; c += 11 {
			price, cash := decimal.NewFromInt(int64(p)), decimal.NewFromInt(int64(c))
			got := CanAfford(price, cash, budget)
			if price.GreaterThan(budget) && got {
				t.Fatalf("price %s > budget approved (cash %s)", price, cash)
			}
			if cash.LessThan(budget) && got {
				t.Fatalf("cash %s < budget approved (price %s)", cash, price)
			}
		}
	}
}

func TestLedgerReservesAcrossSymbols(t *testing.T) {
	l := NewLedger(d("275"), d("500"))
	ctx := context.Background()

	first := l.Decide(ctx, "AAPL", d("200"))
	if !first.Approved {
		t.Fatalf("expected AAPL approved, got %q", first.Reason)
	}
	if !l.Available().Equal(d("300")) {
		t.Errorf("expected 300 available after reservation, got %s", l.Available())
	}

	second := l.Decide(ctx, "MSFT", d("250"))
	if !second.Approved {
		t.Fatalf("expected MSFT approved with 300 left, got %q", second.Reason)
	}

	third := l.Decide(ctx, "SPY", d("10"))
	if third.Approved || third.Reason != ReasonInsufficientFunds {
		t.Errorf("expected insufficient funds after reservations, got %+v", third)
	}

	if !l.Reserved().Equal(d("450")) {
		t.Errorf("expected 450 reserved, got %s", l.Reserved())
	}
}

func TestLedgerOverBudgetDoesNotReserve(t *testing.T) {
	l := NewLedger(d("275"), d("1000"))
	got := l.Decide(context.Background(), "NVDA", d("900"))
	if got.Approved || got.Reason != ReasonOverBudget {
		t.Errorf("expected over budget, got %+v", got)
	}
	if !l.Available().Equal(d("1000")) {
		t.Errorf("rejection must not reserve cash, available %s", l.Available())
	}
}

func TestLedgerRelease(t *testing.T) {
	l := NewLedger(d("275"), d("300"))
	dec := l.Decide(context.Background(), "AAPL", d("100"))
	l.Release(dec.Price)
	if !l.Available().Equal(d("300")) || !l.Reserved().IsZero() {
		t.Errorf("release should restore balance, got available %s reserved %s", l.Available(), l.Reserved())
	}
}
