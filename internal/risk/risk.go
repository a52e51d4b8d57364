package risk

import (
	"context"

	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

const (
	ReasonOverBudget        = "price above budget"
	ReasonInsufficientFunds = "insufficient funds"
	ReasonApproved          = "approved"
)

// CanAfford reports whether one share at price may be bought: the price must
// not exceed the budget and the cash on hand must cover a full budget.
func CanAfford(price, cash, budget decimal.Decimal) bool {
	return price.LessThanOrEqual(budget) && cash.GreaterThanOrEqual(budget)
}

// Ledger tracks cash reserved by orders approved earlier in the same cycle.
// It is built from one broker cash snapshot and discarded at cycle end.
type Ledger struct {
	budget    decimal.Decimal
	available decimal.Decimal
	reserved  decimal.Decimal
}

// NewLedger starts a cycle with the account's cash balance.
//
// Parameters:
//   - budget: Per-symbol spending ceiling, fixed for the life of the process
//   - cash: Broker cash balance read at cycle start
func NewLedger(budget, cash decimal.Decimal) *Ledger {
	return &Ledger{budget: budget, available: cash}
}

// Decide evaluates one symbol and, when approved, reserves its price so the
// next symbol sees the reduced balance.
//
// Returns:
//   - decision: Approved flag and the reason reported to the operator
func (l *Ledger) Decide(ctx context.Context, symbol string, price decimal.Decimal) types.TradeDecision {
	d := types.TradeDecision{Symbol: symbol, Price: price}

	switch {
	case price.GreaterThan(l.budget):
		d.Reason = ReasonOverBudget
	case l.available.LessThan(l.budget):
		d.Reason = ReasonInsufficientFunds
	default:
		d.Approved = true
		d.Reason = ReasonApproved
		l.available = l.available.Sub(price)
		l.reserved = l.reserved.Add(price)
	}

	if !d.Approved {
		logger.Risk(ctx, symbol, d.Reason,
			"price", price.StringFixed(2),
			"budget", l.budget.StringFixed(2),
			"available", l.available.StringFixed(2),
		)
	}
	return d
}

// Release returns a reservation when the order it was made for fails.
func (l *Ledger) Release(price decimal.Decimal) {
	l.available = l.available.Add(price)
	l.reserved = l.reserved.Sub(price)
}

func (l *Ledger) Available() decimal.Decimal { return l.available }

func (l *Ledger) Reserved() decimal.Decimal { return l.reserved }

func (l *Ledger) Budget() decimal.Decimal { return l.budget }
