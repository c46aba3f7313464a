// Package obsmetrics exposes run-scoped Prometheus instruments: equity,
// drawdown, kill-switch trips, and sweep throughput. Each run (and each
// sweep worker) owns its own *prometheus.Registry instead of registering
// against the global default registry, so parallel sweep workers never
// collide on metric registration, the same no-process-wide-state rule
// obslog follows.
package obsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics bundles the instruments one backtest run updates.
type RunMetrics struct {
	Registry *prometheus.Registry

	Equity          prometheus.Gauge
	Drawdown        prometheus.Gauge
	BarsProcessed   prometheus.Counter
	OrdersFilled    *prometheus.CounterVec // labeled by side
	KillSwitchTrips *prometheus.CounterVec // labeled by trigger name
}

// NewRunMetrics builds a fresh registry and instrument set for one run.
func NewRunMetrics() *RunMetrics {
	reg := prometheus.NewRegistry()

	m := &RunMetrics{
		Registry: reg,
		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "backtestlab_equity",
			Help: "Current mark-to-market equity for the active run.",
		}),
		Drawdown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "backtestlab_drawdown",
			Help: "Current fractional drawdown from the running equity peak.",
		}),
		BarsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backtestlab_bars_processed_total",
			Help: "Number of bars processed by the run loop.",
		}),
		OrdersFilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backtestlab_orders_filled_total",
			Help: "Orders filled, labeled by side.",
		}, []string{"side"}),
		KillSwitchTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backtestlab_killswitch_trips_total",
			Help: "Kill-switch trigger activations, labeled by trigger name.",
		}, []string{"trigger"}),
	}

	reg.MustRegister(m.Equity, m.Drawdown, m.BarsProcessed, m.OrdersFilled, m.KillSwitchTrips)
	return m
}

// SweepMetrics bundles the instruments the sweep driver updates across its
// worker pool; one instance is shared read-safely across workers since
// Prometheus counters/gauges are themselves concurrency-safe.
type SweepMetrics struct {
	Registry *prometheus.Registry

	PointsCompleted prometheus.Counter
	PointsFailed    prometheus.Counter
	ActiveWorkers   prometheus.Gauge
}

// NewSweepMetrics builds a fresh registry and instrument set for one sweep.
func NewSweepMetrics() *SweepMetrics {
	reg := prometheus.NewRegistry()

	m := &SweepMetrics{
		Registry: reg,
		PointsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backtestlab_sweep_points_completed_total",
			Help: "Parameter-sweep points evaluated successfully.",
		}),
		PointsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backtestlab_sweep_points_failed_total",
			Help: "Parameter-sweep points that failed evaluation.",
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "backtestlab_sweep_active_workers",
			Help: "Number of sweep workers currently evaluating a point.",
		}),
	}

	reg.MustRegister(m.PointsCompleted, m.PointsFailed, m.ActiveWorkers)
	return m
}
