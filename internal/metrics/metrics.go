// Package metrics exposes Prometheus counters and histograms for the
// server's operational surface: ticks, trades, active sessions, and
// request latency. Registered against a private registry rather than the
// global default so the package stays import-safe for tests that build
// more than one server in the same process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps a private Prometheus registry and the metrics this server
// reports against it.
type Registry struct {
	reg *prometheus.Registry

	TicksTotal      *prometheus.CounterVec
	TradesTotal     *prometheus.CounterVec
	SessionsActive  prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
}

// New builds and registers every metric this server reports.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		TicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uistd_ticks_total",
			Help: "Total ticks processed, by session.",
		}, []string{"session"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uistd_trades_total",
			Help: "Total trades executed, by session and side.",
		}, []string{"session", "side"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uistd_sessions_active",
			Help: "Number of live backtest sessions.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uistd_request_duration_seconds",
			Help:    "Request handling latency, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(r.TicksTotal, r.TradesTotal, r.SessionsActive, r.RequestDuration)
	return r
}

// Handler returns the HTTP handler serving this registry's Prometheus
// exposition format, meant to be mounted at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
