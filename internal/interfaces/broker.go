package interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/types"
)

type Broker interface {
	// CashBalance returns the live settled cash available for new orders.
	CashBalance(ctx context.Context) (decimal.Decimal, error)
	// PlaceOrder submits an order and returns the broker's receipt.
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderReceipt, error)
}
