package zerodha

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string
	Product     string
	Timeout     time.Duration
}

// kite is the slice of the Kite Connect client this broker uses.
type kite interface {
	GetUserMargins() (kiteconnect.AllMargins, error)
	PlaceOrder(variety string, orderParams kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)
}

// Zerodha submits orders through Kite Connect.
type Zerodha struct {
	p  Params
	kc kite
}

var _ interfaces.Broker = (*Zerodha)(nil)

func NewZerodha(p Params) (*Zerodha, error) {
	if p.APIKey == "" || p.AccessToken == "" {
		return nil, types.NewError(types.KindConfig, "zerodha.New", errors.New("missing API key/access token"))
	}
	if p.Exchange == "" {
		p.Exchange = "NSE"
	}
	if p.Product == "" {
		p.Product = "CNC"
	}
	if p.Timeout <= 0 {
		p.Timeout = 15 * time.Second
	}

	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	kc.SetHTTPClient(&http.Client{Timeout: p.Timeout})
	return &Zerodha{p: p, kc: kc}, nil
}

// CashBalance is the net equity margin available for new orders.
func (z *Zerodha) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, types.Transient("zerodha.CashBalance", err)
	}
	m, err := z.kc.GetUserMargins()
	if err != nil {
		return decimal.Zero, classify("zerodha.CashBalance", err)
	}
	return decimal.NewFromFloat(m.Equity.Net), nil
}

func (z *Zerodha) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderReceipt, error) {
	if err := ctx.Err(); err != nil {
		return types.OrderReceipt{}, types.Transient("zerodha.PlaceOrder", err)
	}

	params := kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   req.Symbol,
		Validity:        req.TimeInForce,
		Product:         z.p.Product,
		OrderType:       req.Type,
		TransactionType: string(req.Side),
		Quantity:        req.Qty,
		Tag:             req.Tag,
	}

	resp, err := z.kc.PlaceOrder(kiteconnect.VarietyRegular, params)
	if err != nil {
		return types.OrderReceipt{}, classify("zerodha.PlaceOrder", err)
	}
	return types.OrderReceipt{
		OrderID:       resp.OrderID,
		ClientOrderID: req.Tag,
		Status:        "PLACED",
		Message:       "ok",
	}, nil
}

// classify maps Kite exception types onto error kinds.
func classify(op string, err error) error {
	var kerr kiteconnect.Error
	if errors.As(err, &kerr) {
		switch kerr.ErrorType {
		case "InputException", "OrderException", "MarginException", "PermissionException", "TokenException":
			return types.Policy(op, fmt.Errorf("%s: %w", kerr.ErrorType, err))
		case "DataException":
			return types.NotFound(op, err)
		}
	}
	return types.Transient(op, err)
}
