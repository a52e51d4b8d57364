package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-signal-bot/internal/clock"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

type fakeEngine struct {
	calls  int
	errs   []error
	panics bool
}

func (f *fakeEngine) RunCycle(ctx context.Context) (*types.CycleResult, error) {
	f.calls++
	if f.panics {
		panic("boom")
	}
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	return &types.CycleResult{}, err
}

type openGate bool

func (g openGate) IsTradeable(time.Time) bool { return bool(g) }

func eastern(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2024, 3, 12, hour, minute, 0, 0, loc)
}

func TestTickMarketClosedSkipsCycle(t *testing.T) {
	eng := &fakeEngine{}
	gate := clock.NewUS(false)
	l := New(eng, gate, FixedDelay{Delay: 5 * time.Second}, time.Minute, 90*time.Second,
		WithClock(func() time.Time { return eastern(t, 20, 0) }))

	if d := l.Tick(context.Background()); d != 90*time.Second {
		t.Errorf("expected market wait of 90s, got %v", d)
	}
	if eng.calls != 0 {
		t.Errorf("engine ran %d times while the market was closed", eng.calls)
	}
	if l.State() != StateWaitingForMarket {
		t.Errorf("expected WAITING_FOR_MARKET, got %s", l.State())
	}
}

func TestTickBypassRunsAfterHours(t *testing.T) {
	eng := &fakeEngine{}
	l := New(eng, clock.NewUS(true), FixedDelay{Delay: 5 * time.Second}, time.Minute, 90*time.Second,
		WithClock(func() time.Time { return eastern(t, 20, 0) }))

	if d := l.Tick(context.Background()); d != time.Minute {
		t.Errorf("expected cycle interval, got %v", d)
	}
	if eng.calls != 1 || l.State() != StateSleeping {
		t.Errorf("expected one cycle then SLEEPING, got %d calls in %s", eng.calls, l.State())
	}
}

func TestTickErrorKinds(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		want  time.Duration
		state State
	}{
		{"transient", types.Transient("x", errors.New("timeout")), 5 * time.Second, StateErrorRecovery},
		{"unclassified", errors.New("plain"), 5 * time.Second, StateErrorRecovery},
		{"config", types.NewError(types.KindConfig, "x", errors.New("bad key")), 5 * time.Second, StateErrorRecovery},
		{"policy", types.Policy("x", errors.New("market closed at broker")), time.Minute, StateSleeping},
		{"not found", types.NotFound("x", errors.New("no bars")), time.Minute, StateSleeping},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := &fakeEngine{errs: []error{tc.err}}
			l := New(eng, openGate(true), FixedDelay{Delay: 5 * time.Second}, time.Minute, time.Minute)

			if d := l.Tick(context.Background()); d != tc.want {
				t.Errorf("delay = %v, want %v", d, tc.want)
			}
			if l.State() != tc.state {
				t.Errorf("state = %s, want %s", l.State(), tc.state)
			}
		})
	}
}

func TestTickRecoversFromPanic(t *testing.T) {
	l := New(&fakeEngine{panics: true}, openGate(true), FixedDelay{Delay: 3 * time.Second}, time.Minute, time.Minute)
	if d := l.Tick(context.Background()); d != 3*time.Second || l.State() != StateErrorRecovery {
		t.Errorf("expected recovery after panic, got %v in %s", d, l.State())
	}
}

func TestBackoffGrowsAndResets(t *testing.T) {
	transient := types.Transient("x", errors.New("down"))
	eng := &fakeEngine{errs: []error{transient, transient, transient, transient, nil, transient}}
	l := New(eng, openGate(true), NewExponentialBackoff(5*time.Second, 15*time.Second, 2), time.Minute, time.Minute)

	want := []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second, 15 * time.Second, time.Minute, 5 * time.Second}
	for i, w := range want {
		if d := l.Tick(context.Background()); d != w {
			t.Errorf("tick %d: delay = %v, want %v", i, d, w)
		}
	}
}

func TestFixedDelayNeverGrows(t *testing.T) {
	f := FixedDelay{Delay: 5 * time.Second}
	for i := 0; i < 4; i++ {
		if d := f.Next(); d != 5*time.Second {
			t.Fatalf("attempt %d: got %v", i, d)
		}
	}
}

func TestRetryPolicyFromConfig(t *testing.T) {
	cfg := store.Default()
	p, err := RetryPolicyFromConfig(cfg)
	if err != nil {
		t.Fatalf("RetryPolicyFromConfig: %v", err)
	}
	if _, ok := p.(*ExponentialBackoff); !ok {
		t.Errorf("expected exponential default, got %T", p)
	}

	cfg.Loop.Retry.Strategy = "FIXED"
	if p, _ = RetryPolicyFromConfig(cfg); p.Next() != 5*time.Second {
		t.Errorf("expected fixed 5s delay, got %v", p.Next())
	}

	cfg.Loop.Retry.Strategy = "LINEAR"
	if _, err := RetryPolicyFromConfig(cfg); types.KindOf(err) != types.KindConfig {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	eng := &fakeEngine{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	l := New(eng, openGate(false), FixedDelay{Delay: time.Second}, time.Minute, 30*time.Second,
		WithSleep(func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			if len(sleeps) == 3 {
				cancel()
			}
			return ctx.Err()
		}))

	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(sleeps) != 3 || eng.calls != 0 {
		t.Errorf("expected three market waits and no cycles, got %v and %d calls", sleeps, eng.calls)
	}
	for _, d := range sleeps {
		if d != 30*time.Second {
			t.Errorf("expected market wait sleeps, got %v", d)
		}
	}
}
