package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-signal-bot/internal/engine"
	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/types"
)

type State string

const (
	StateWaitingForMarket State = "WAITING_FOR_MARKET"
	StateDiscovering      State = "DISCOVERING"
	StateFiltering        State = "FILTERING"
	StateDeciding         State = "DECIDING"
	StateSleeping         State = "SLEEPING"
	StateErrorRecovery    State = "ERROR_RECOVERY"
)

var allStates = []string{
	string(StateWaitingForMarket),
	string(StateDiscovering),
	string(StateFiltering),
	string(StateDeciding),
	string(StateSleeping),
	string(StateErrorRecovery),
}

// MarketGate reports whether orders may be placed at a given instant.
type MarketGate interface {
	IsTradeable(now time.Time) bool
}

type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithSleep replaces the context-aware sleep used between ticks.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) { l.sleep = sleep }
}

// Loop drives the pipeline: it waits for the market, runs a cycle, sleeps,
// and answers failures according to their kind. It has no terminal state.
type Loop struct {
	engine     interfaces.Engine
	gate       MarketGate
	retry      RetryPolicy
	interval   time.Duration
	marketWait time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	state State
}

// New builds a loop.
//
// Parameters:
//   - eng: Runs one pipeline cycle
//   - gate: Market-hours check, bypass already applied
//   - retry: Delay policy for ERROR_RECOVERY
//   - interval: Sleep between successful cycles
//   - marketWait: Sleep between checks while the market is closed
func New(eng interfaces.Engine, gate MarketGate, retry RetryPolicy, interval, marketWait time.Duration, opts ...Option) *Loop {
	l := &Loop{
		engine:     eng,
		gate:       gate,
		retry:      retry,
		interval:   interval,
		marketWait: marketWait,
		now:        time.Now,
		sleep:      sleepContext,
		state:      StateWaitingForMarket,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
	metrics.SetLoopState(string(s), allStates)
}

// Run ticks until ctx is cancelled and returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	logger.Info(ctx, "Orchestrator started",
		"interval", l.interval.String(),
		"market_wait", l.marketWait.String(),
	)
	for {
		d := l.Tick(ctx)
		if err := l.sleep(ctx, d); err != nil {
			logger.Info(ctx, "Orchestrator stopped", "state", string(l.State()), "reason", err.Error())
			return err
		}
	}
}

// Tick performs one pass of the state machine and returns how long to sleep
// before the next one.
func (l *Loop) Tick(ctx context.Context) time.Duration {
	l.setState(StateWaitingForMarket)
	now := l.now()
	if !l.gate.IsTradeable(now) {
		logger.Debug(ctx, "Market closed, waiting", "now", now.Format(time.RFC3339), "wait", l.marketWait.String())
		return l.marketWait
	}

	stageCtx := engine.WithStageHook(ctx, func(stage string) { l.setState(State(stage)) })
	_, err := l.runCycle(stageCtx)
	if err == nil {
		l.retry.Reset()
		l.setState(StateSleeping)
		return l.interval
	}
	if ctx.Err() != nil {
		return 0
	}

	switch kind := types.KindOf(err); kind {
	case types.KindNotFound, types.KindMalformed, types.KindPolicy:
		logger.Warn(ctx, "Cycle ended early", "kind", kind.String(), "error", err)
		l.retry.Reset()
		l.setState(StateSleeping)
		return l.interval
	default:
		l.setState(StateErrorRecovery)
		d := l.retry.Next()
		logger.ErrorWithErr(ctx, "Cycle failed, recovering", err, "kind", kind.String(), "retry_in", d.String())
		return d
	}
}

// runCycle turns a panic in the cycle into a transient error so the loop
// keeps going.
func (l *Loop) runCycle(ctx context.Context) (res *types.CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.Transient("orchestrator.runCycle", fmt.Errorf("panic: %v", r))
		}
	}()
	return l.engine.RunCycle(ctx)
}
