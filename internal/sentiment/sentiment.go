package sentiment

import (
	"context"
	"fmt"
	"strings"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/types"
)

// Policy selects how often sentiment is consulted during a cycle.
type Policy string

const (
	PerCycle  Policy = "per_cycle"
	PerSymbol Policy = "per_symbol"
	Off       Policy = "off"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PerCycle, PerSymbol, Off:
		return p, nil
	case "":
		return PerCycle, nil
	default:
		return "", types.NewError(types.KindConfig, "sentiment.ParsePolicy", fmt.Errorf("unknown policy %q", s))
	}
}

// ReasonNotPositive is reported when the gate blocks orders.
const ReasonNotPositive = "sentiment not positive"

// Gate admits orders only on POSITIVE sentiment.
type Gate struct {
	classifier interfaces.Classifier
}

func NewGate(c interfaces.Classifier) *Gate {
	return &Gate{classifier: c}
}

// Check classifies text. The bool is true only for POSITIVE; on error it is
// false and the label is NEUTRAL.
func (g *Gate) Check(ctx context.Context, text string) (bool, types.SentimentLabel, error) {
	label, err := g.classifier.Classify(ctx, text)
	if err != nil {
		return false, types.Neutral, err
	}
	label = types.ParseSentiment(string(label))
	return label == types.Positive, label, nil
}
