// Package metrics holds the prometheus collectors for invocations and the
// compile service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Invocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainsim_invocations_total",
		Help: "Contract function invocations by path (read/write) and final phase",
	}, []string{"path", "phase"})

	ValidationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainsim_validation_errors_total",
		Help: "Input fields rejected by the value parser, by declared type",
	}, []string{"type"})

	GasUsed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chainsim_gas_used",
		Help:    "Gas used by confirmed write invocations",
		Buckets: prometheus.ExponentialBuckets(21000, 2, 10),
	})

	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chainsim_dispatch_duration_seconds",
		Help:    "Time from dispatch to completion or failure",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	Compilations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chainsim_compilations_total",
		Help: "Compile requests by result (ok, error, failure)",
	}, []string{"result"})

	CompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chainsim_compile_duration_seconds",
		Help:    "Time spent in solc per compile request",
		Buckets: prometheus.DefBuckets,
	})
)

// Timer observes elapsed time into a histogram once.
type Timer struct {
	start time.Time
	obs   prometheus.Observer
}

// NewTimer starts a timer against obs.
func NewTimer(obs prometheus.Observer) *Timer {
	return &Timer{start: time.Now(), obs: obs}
}

// Stop records the elapsed time.
func (t *Timer) Stop() {
	t.obs.Observe(time.Since(t.start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Serve exposes /metrics on addr until the server fails.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}
