package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Symbol = string

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type SentimentLabel string

const (
	Positive SentimentLabel = "POSITIVE"
	Negative SentimentLabel = "NEGATIVE"
	Neutral  SentimentLabel = "NEUTRAL"
)

// ParseSentiment maps free-form classifier output onto a label. Only the
// whole words POSITIVE/NEGATIVE (or the LABEL_1/LABEL_0 classifier ids)
// count; anything else is NEUTRAL.
func ParseSentiment(s string) SentimentLabel {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.Trim(s, ".,:;!\"'`*")
	switch s {
	case "POSITIVE", "LABEL_1":
		return Positive
	case "NEGATIVE", "LABEL_0":
		return Negative
	default:
		return Neutral
	}
}

type PricePoint struct {
	Time  time.Time
	Open  decimal.Decimal
	Close decimal.Decimal
}

type PriceChange struct {
	Symbol    Symbol          `json:"symbol"`
	Pct       float64         `json:"pct"`
	Reference decimal.Decimal `json:"reference"`
	Last      decimal.Decimal `json:"last"`
	At        time.Time       `json:"at"`
}

type InstrumentMeta struct {
	Symbol    Symbol `json:"symbol"`
	Name      string `json:"name"`
	QuoteType string `json:"quote_type"`
	Exchange  string `json:"exchange"`
}

// Empty reports whether the provider returned nothing usable for the symbol.
func (m InstrumentMeta) Empty() bool {
	return m.Symbol == "" || (m.Name == "" && m.QuoteType == "")
}

type TradeDecision struct {
	Symbol   Symbol          `json:"symbol"`
	Approved bool            `json:"approved"`
	Reason   string          `json:"reason"`
	Price    decimal.Decimal `json:"price"`
}

type OrderReq struct {
	Symbol      Symbol
	Side        Side
	Qty         int
	Type        string
	TimeInForce string
	Tag         string
}

type OrderReceipt struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
}

type GenConfig struct {
	MaxTokens   int
	Temperature float32
}

// CycleResult summarises one pass of the pipeline.
type CycleResult struct {
	Started    time.Time       `json:"started"`
	Text       string          `json:"-"`
	Candidates []Symbol        `json:"candidates"`
	Valid      []Symbol        `json:"valid"`
	Filtered   []PriceChange   `json:"filtered"`
	Sentiment  SentimentLabel  `json:"sentiment,omitempty"`
	Decisions  []TradeDecision `json:"decisions"`
	Orders     []OrderReceipt  `json:"orders"`
	Reason     string          `json:"reason,omitempty"`
}
