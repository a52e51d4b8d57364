package engine

import "context"

// Pipeline stages reported while a cycle runs.
const (
	StageDiscovering = "DISCOVERING"
	StageFiltering   = "FILTERING"
	StageDeciding    = "DECIDING"
)

type stageKey struct{}

// WithStageHook returns a context whose cycles report each stage to fn.
func WithStageHook(ctx context.Context, fn func(stage string)) context.Context {
	return context.WithValue(ctx, stageKey{}, fn)
}

func enterStage(ctx context.Context, stage string) {
	if fn, ok := ctx.Value(stageKey{}).(func(string)); ok && fn != nil {
		fn(stage)
	}
}
