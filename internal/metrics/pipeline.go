// FILE: pipeline.go
// Package metrics implements the streaming metrics pipeline: each metric is
// its own processor maintaining O(1) or O(window) state and emitting a
// snapshot on demand, replacing a single batch pass over the whole equity
// curve.
package metrics

import (
	"time"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
	"github.com/chidi150c/backtestlab/internal/xerrors"
)

// Processor is one streaming metric. Initialize precedes all other calls;
// implementations must tolerate any call order of OnBar/OnTrade after that
// and must never mutate another processor's state.
type Processor interface {
	Name() string
	Initialize(initialCash float64)
	OnBar(timestamp time.Time, equity float64, bar bardata.Bar)
	OnTrade(trade portfolio.TradeLedgerEntry)
	Snapshot() map[string]float64
	Reset()
}

// Pipeline owns an ordered list of named processors, dispatched in
// insertion order.
type Pipeline struct {
	order   []string
	byName  map[string]Processor
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{byName: make(map[string]Processor)}
}

// NewDefaultPipeline assembles the reference processor set: equity curve,
// drawdown, trade list, and Sharpe/Sortino with a zero risk-free rate.
func NewDefaultPipeline() *Pipeline {
	pl := NewPipeline()
	_ = pl.Add(NewEquityCurve())
	_ = pl.Add(NewDrawdown())
	_ = pl.Add(NewTradeList())
	_ = pl.Add(NewSharpeSortino(0))
	return pl
}

// Add appends a processor. Duplicate names are rejected with a ConfigError.
func (pl *Pipeline) Add(p Processor) error {
	if _, exists := pl.byName[p.Name()]; exists {
		return xerrors.ConfigError("duplicate metrics processor name: " + p.Name())
	}
	pl.byName[p.Name()] = p
	pl.order = append(pl.order, p.Name())
	return nil
}

// Remove drops a processor by name. No-op if absent.
func (pl *Pipeline) Remove(name string) {
	if _, exists := pl.byName[name]; !exists {
		return
	}
	delete(pl.byName, name)
	for i, n := range pl.order {
		if n == name {
			pl.order = append(pl.order[:i], pl.order[i+1:]...)
			break
		}
	}
}

// Initialize dispatches Initialize to every processor in insertion order.
func (pl *Pipeline) Initialize(initialCash float64) {
	for _, n := range pl.order {
		pl.byName[n].Initialize(initialCash)
	}
}

// OnBar dispatches OnBar to every processor in insertion order.
func (pl *Pipeline) OnBar(timestamp time.Time, equity float64, bar bardata.Bar) {
	for _, n := range pl.order {
		pl.byName[n].OnBar(timestamp, equity, bar)
	}
}

// OnTrade dispatches OnTrade to every processor in insertion order.
func (pl *Pipeline) OnTrade(trade portfolio.TradeLedgerEntry) {
	for _, n := range pl.order {
		pl.byName[n].OnTrade(trade)
	}
}

// Snapshot merges every processor's named metrics, then adds derived
// Calmar = annualized_return / |max_drawdown|.
func (pl *Pipeline) Snapshot() map[string]float64 {
	out := make(map[string]float64)
	for _, n := range pl.order {
		for k, v := range pl.byName[n].Snapshot() {
			out[k] = v
		}
	}
	if ar, ok := out["annualized_return"]; ok {
		if md, ok2 := out["max_drawdown"]; ok2 && md != 0 {
			out["calmar"] = ar / absf(md)
		}
	}
	return out
}

// Reset dispatches Reset to every processor.
func (pl *Pipeline) Reset() {
	for _, n := range pl.order {
		pl.byName[n].Reset()
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
