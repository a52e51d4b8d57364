package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

const DefaultBaseURL = "https://paper-api.alpaca.markets"

type Params struct {
	KeyID     string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Client talks to the Alpaca trading REST API.
type Client struct {
	client *resty.Client
}

var _ interfaces.Broker = (*Client)(nil)

type account struct {
	Cash        string `json:"cash"`
	BuyingPower string `json:"buying_power"`
	Status      string `json:"status"`
}

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	ClientOrderID string `json:"client_order_id"`
}

type orderResponse struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id"`
	Status        string `json:"status"`
	Symbol        string `json:"symbol"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func New(p Params) (*Client, error) {
	if p.KeyID == "" || p.SecretKey == "" {
		return nil, types.NewError(types.KindConfig, "alpaca.New", errors.New("missing APCA_API_KEY_ID/APCA_API_SECRET_KEY"))
	}
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.Timeout <= 0 {
		p.Timeout = 15 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(p.BaseURL, "/")).
		SetTimeout(p.Timeout).
		SetHeader("APCA-API-KEY-ID", p.KeyID).
		SetHeader("APCA-API-SECRET-KEY", p.SecretKey).
		SetHeader("Accept", "application/json")

	return &Client{client: c}, nil
}

func (c *Client) CashBalance(ctx context.Context) (decimal.Decimal, error) {
	const op = "alpaca.CashBalance"
	var acct account
	var apiErr apiError

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&acct).
		SetError(&apiErr).
		Get("/v2/account")
	if err != nil {
		return decimal.Zero, types.Transient(op, err)
	}
	if resp.IsError() {
		return decimal.Zero, statusError(op, resp.StatusCode(), apiErr.Message)
	}

	cash, err := decimal.NewFromString(acct.Cash)
	if err != nil {
		return decimal.Zero, types.NewError(types.KindMalformed, op, fmt.Errorf("cash %q: %w", acct.Cash, err))
	}
	return cash, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderReceipt, error) {
	const op = "alpaca.PlaceOrder"

	body := orderRequest{
		Symbol:        req.Symbol,
		Qty:           strconv.Itoa(req.Qty),
		Side:          strings.ToLower(string(req.Side)),
		Type:          strings.ToLower(req.Type),
		TimeInForce:   strings.ToLower(req.TimeInForce),
		ClientOrderID: uuid.NewString(),
	}

	var out orderResponse
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v2/orders")
	if err != nil {
		return types.OrderReceipt{}, types.Transient(op, err)
	}
	if resp.IsError() {
		return types.OrderReceipt{}, statusError(op, resp.StatusCode(), apiErr.Message)
	}

	return types.OrderReceipt{
		OrderID:       out.ID,
		ClientOrderID: body.ClientOrderID,
		Status:        out.Status,
	}, nil
}

func statusError(op string, status int, msg string) error {
	err := fmt.Errorf("status %d: %s", status, msg)
	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return types.Transient(op, err)
	case status == http.StatusNotFound:
		return types.NotFound(op, err)
	case status == http.StatusUnauthorized:
		return types.NewError(types.KindConfig, op, err)
	default:
		return types.Policy(op, err)
	}
}
