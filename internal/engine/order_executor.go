package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

const orderTag = "signal"

// OrderExecutor submits single-share market buys.
type OrderExecutor struct {
	broker interfaces.Broker
	budget decimal.Decimal
}

func NewOrderExecutor(broker interfaces.Broker, budget decimal.Decimal) *OrderExecutor {
	return &OrderExecutor{broker: broker, budget: budget}
}

// BuyOneShare places a quantity-1 market DAY buy. Orders are independent:
// a failure here never affects orders already placed.
func (oe *OrderExecutor) BuyOneShare(ctx context.Context, symbol string) (types.OrderReceipt, error) {
	req := types.OrderReq{
		Symbol:      symbol,
		Side:        types.SideBuy,
		Qty:         1,
		Type:        "MARKET",
		TimeInForce: "DAY",
		Tag:         orderTag,
	}

	rec, err := oe.broker.PlaceOrder(ctx, req)
	if err != nil {
		return types.OrderReceipt{}, err
	}

	logger.Info(ctx, "Order submitted",
		"symbol", symbol,
		"order_id", rec.OrderID,
		"status", rec.Status,
		"budget", oe.budget.StringFixed(2),
	)
	return rec, nil
}
