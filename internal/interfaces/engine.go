package interfaces

import (
	"context"

	"stock-signal-bot/internal/types"
)

// Engine runs one full pipeline cycle.
type Engine interface {
	RunCycle(ctx context.Context) (*types.CycleResult, error)
}
