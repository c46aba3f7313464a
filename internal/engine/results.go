package engine

import (
	"time"

	"github.com/chidi150c/backtestlab/internal/metrics"
	"github.com/chidi150c/backtestlab/internal/portfolio"
)

// TriggerReport is one activated kill-switch trigger's record, surfaced in
// the results artifact.
type TriggerReport struct {
	Name             string
	ActivationTime   time.Time
	ActivationReason string
}

// KillSwitchReport lists every trigger that activated during the run, in
// manager evaluation order. Empty if the run completed without a trip.
type KillSwitchReport struct {
	Activated []TriggerReport
}

// Tripped reports whether any kill switch activated during the run.
func (r KillSwitchReport) Tripped() bool { return len(r.Activated) > 0 }

// Results is the artifact a completed run returns: the final portfolio
// snapshot, the full equity curve, the trade ledger, the metrics snapshot,
// and the kill-switch activation report. Serialization format is caller-
// chosen; field names in any derived table should stay lowercase-snake.
type Results struct {
	Portfolio    *portfolio.Portfolio
	EquityCurve  []portfolio.EquityPoint
	TradeLedger  []portfolio.TradeLedgerEntry
	Metrics      metrics.Summary
	KillSwitches KillSwitchReport

	// HasBenchmark/BenchmarkReturn are set only when Config.Benchmark was
	// supplied; off by default.
	HasBenchmark    bool
	BenchmarkReturn float64
}
