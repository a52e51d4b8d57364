package brokerobs

import (
	"context"

	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/trace"
	"stock-signal-bot/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{broker: broker}
}

func (ob *observableBroker) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	ctx, span := trace.StartSpan(ctx, "broker.CashBalance")
	defer span.End()

	cash, err := ob.broker.CashBalance(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch cash balance", err, "kind", types.KindOf(err).String())
		return decimal.Zero, err
	}

	logger.DebugSkip(ctx, 1, "Cash balance fetched", "cash", cash.StringFixed(2))
	return cash, nil
}

// PlaceOrder places an order with observability
func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderReceipt, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", req.Symbol,
		"side", req.Side,
		"qty", req.Qty,
		"type", req.Type,
		"time_in_force", req.TimeInForce,
	)

	rec, err := ob.broker.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", req.Symbol,
			"side", req.Side,
			"qty", req.Qty,
			"kind", types.KindOf(err).String(),
		)
		return types.OrderReceipt{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed successfully",
		"symbol", req.Symbol,
		"order_id", rec.OrderID,
		"status", rec.Status,
	)
	return rec, nil
}
