package orchestrator

import (
	"fmt"
	"time"

	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// RetryPolicy decides how long to wait after a failed cycle.
type RetryPolicy interface {
	// Next returns the delay before the next attempt and advances the policy.
	Next() time.Duration
	// Reset is called after a successful cycle.
	Reset()
}

// ExponentialBackoff grows the delay by Multiplier on each consecutive
// failure, capped at Max.
type ExponentialBackoff struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64

	current time.Duration
}

func NewExponentialBackoff(base, max time.Duration, multiplier float64) *ExponentialBackoff {
	if multiplier < 1 {
		multiplier = 1
	}
	if max < base {
		max = base
	}
	return &ExponentialBackoff{Base: base, Max: max, Multiplier: multiplier}
}

func (b *ExponentialBackoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.Base
		return b.current
	}
	next := time.Duration(float64(b.current) * b.Multiplier)
	if next > b.Max || next < b.current {
		next = b.Max
	}
	b.current = next
	return b.current
}

func (b *ExponentialBackoff) Reset() {
	b.current = 0
}

// FixedDelay waits the same time after every failure.
type FixedDelay struct {
	Delay time.Duration
}

func (f FixedDelay) Next() time.Duration { return f.Delay }

func (f FixedDelay) Reset() {}

// RetryPolicyFromConfig builds the policy named by loop.retry.
func RetryPolicyFromConfig(cfg *store.Config) (RetryPolicy, error) {
	r := cfg.Loop.Retry
	base := time.Duration(r.BaseSeconds) * time.Second
	switch r.Strategy {
	case "EXPONENTIAL":
		return NewExponentialBackoff(base, time.Duration(r.MaxSeconds)*time.Second, r.Multiplier), nil
	case "FIXED":
		return FixedDelay{Delay: base}, nil
	default:
		return nil, types.NewError(types.KindConfig, "orchestrator.RetryPolicyFromConfig",
			fmt.Errorf("unknown retry strategy %q", r.Strategy))
	}
}
