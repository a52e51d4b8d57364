package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

// PriceSource supplies fill prices for simulated orders.
type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Broker simulates fills at the last price and debits a local cash balance.
// Nothing leaves the process.
type Broker struct {
	mu     sync.Mutex
	cash   decimal.Decimal
	prices PriceSource
	fills  []types.OrderReceipt
}

var _ interfaces.Broker = (*Broker)(nil)

func New(startingCash decimal.Decimal, prices PriceSource) *Broker {
	return &Broker{cash: startingCash, prices: prices}
}

func (b *Broker) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cash, nil
}

func (b *Broker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderReceipt, error) {
	const op = "paper.PlaceOrder"
	if req.Side != types.SideBuy {
		return types.OrderReceipt{}, types.Policy(op, fmt.Errorf("side %s not supported", req.Side))
	}

	cost := decimal.Zero
	if b.prices != nil {
		price, err := b.prices.LastPrice(ctx, req.Symbol)
		if err != nil {
			return types.OrderReceipt{}, err
		}
		cost = price.Mul(decimal.NewFromInt(int64(req.Qty)))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cash.LessThan(cost) {
		return types.OrderReceipt{}, types.Policy(op, fmt.Errorf("insufficient cash %s for %s", b.cash.StringFixed(2), cost.StringFixed(2)))
	}
	b.cash = b.cash.Sub(cost)

	rec := types.OrderReceipt{
		OrderID:       fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
		ClientOrderID: uuid.NewString(),
		Status:        "SIMULATED",
		Message:       "dry-run",
	}
	b.fills = append(b.fills, rec)
	return rec, nil
}

// Fills returns the receipts issued so far.
func (b *Broker) Fills() []types.OrderReceipt {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.OrderReceipt(nil), b.fills...)
}
