package engineobs

import (
	"context"
	"time"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{engine: eng}
}

func (oe *observableEngine) RunCycle(ctx context.Context) (*types.CycleResult, error) {
	op := logger.StartOperation(ctx, "engine.RunCycle")
	ctx = op.GetContext()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Starting pipeline cycle")

	result, err := oe.engine.RunCycle(ctx)
	if err != nil {
		kind := types.KindOf(err).String()
		metrics.ObserveCycle("error_"+kind, time.Since(start))
		op.EndWithError(err, "kind", kind)
		return result, err
	}

	metrics.ObserveCycle("ok", time.Since(start))
	logger.InfoSkip(ctx, 1, "Pipeline cycle completed",
		"candidates", len(result.Candidates),
		"valid", len(result.Valid),
		"filtered", len(result.Filtered),
		"sentiment", result.Sentiment,
		"orders", len(result.Orders),
		"reason", result.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	op.End("orders", len(result.Orders))
	return result, nil
}
