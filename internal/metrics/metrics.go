package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bot_cycles_total", Help: "Pipeline cycles by outcome"},
		[]string{"outcome"},
	)
	Candidates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "bot_candidates", Help: "Symbols surviving each pipeline stage in the last cycle"},
		[]string{"stage"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bot_orders_total", Help: "Buy orders by result"},
		[]string{"status"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_cycle_duration_seconds",
			Help:    "Wall time of one pipeline cycle",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
	LoopState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "bot_loop_state", Help: "1 for the orchestrator's current state"},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, Candidates, OrdersTotal, CycleDuration, LoopState)
}

// SetStage records how many symbols are left after a pipeline stage.
func SetStage(stage string, n int) {
	Candidates.WithLabelValues(stage).Set(float64(n))
}

func ObserveCycle(outcome string, d time.Duration) {
	CyclesTotal.WithLabelValues(outcome).Inc()
	CycleDuration.Observe(d.Seconds())
}

// SetLoopState marks state as current and clears the others in states.
func SetLoopState(state string, states []string) {
	for _, s := range states {
		v := 0.0
		if s == state {
			v = 1
		}
		LoopState.WithLabelValues(s).Set(v)
	}
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
