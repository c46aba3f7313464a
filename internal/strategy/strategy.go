// FILE: strategy.go
// Package strategy defines the fixed four-method contract user strategies
// implement, and the per-run context they receive. Strategies are values
// constructed by a zero-argument factory per sweep point; no dynamic
// discovery or duck-typed callbacks.
package strategy

import (
	"time"

	"github.com/google/uuid"

	"github.com/chidi150c/backtestlab/internal/atr"
	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
	"github.com/chidi150c/backtestlab/internal/xerrors"
)

// ErrPositionExists is returned when a strategy attempts to enter while a
// position is already open for the symbol.
func ErrPositionExists(symbol string, at time.Time) error {
	return xerrors.InvariantError("position already exists for "+symbol, at)
}

// ErrNoPosition is returned when a strategy attempts to exit a symbol with
// no open position.
func ErrNoPosition(symbol string, at time.Time) error {
	return xerrors.InvariantError("no open position for "+symbol, at)
}

// OrderSink is the channel through which OnBar emits new orders against the
// portfolio; it is simply the relevant subset of *portfolio.Portfolio's
// placement methods, named here so strategies depend on a narrow interface.
type OrderSink interface {
	PlaceBuy(symbol string, qty float64, at time.Time) *portfolio.Order
	PlaceSell(symbol string, qty float64, at time.Time) *portfolio.Order
	PlaceBuyLimit(symbol string, qty, limitPrice float64, at time.Time) *portfolio.Order
	PlaceSellLimit(symbol string, qty, limitPrice float64, at time.Time) *portfolio.Order
	PlaceBuyStop(symbol string, qty, stopPrice float64, at time.Time) *portfolio.Order
	PlaceSellStop(symbol string, qty, stopPrice float64, at time.Time) *portfolio.Order
	PlaceBuyStopLimit(symbol string, qty, stopPrice, limitPrice float64, at time.Time) *portfolio.Order
	PlaceSellStopLimit(symbol string, qty, stopPrice, limitPrice float64, at time.Time) *portfolio.Order
}

// EngineContext is the read-mostly view a strategy receives each bar: the
// portfolio, current and prior bar, the read-only ATR state and price
// buffer, an order sink, and a strategy-local scratch store. Components
// reach each other only through it, so there is no strategy<->portfolio
// <->engine reference cycle.
type EngineContext struct {
	Portfolio   *portfolio.Portfolio
	CurrentBar  bardata.Bar
	PriorBar    bardata.Bar
	HasPrior    bool
	ATR         *atr.ATRState
	PriceBuffer *atr.PriceBuffer
	Orders      OrderSink

	state map[string]any
}

// NewEngineContext builds a fresh EngineContext for a run.
func NewEngineContext(p *portfolio.Portfolio, a *atr.ATRState, pb *atr.PriceBuffer, sink OrderSink) *EngineContext {
	return &EngineContext{
		Portfolio:   p,
		ATR:         a,
		PriceBuffer: pb,
		Orders:      sink,
		state:       make(map[string]any),
	}
}

// SetState stores a strategy-local scratch value, keyed by name. Values do
// not persist across runs; a fresh EngineContext is built per backtest.
func (c *EngineContext) SetState(key string, value any) {
	c.state[key] = value
}

// GetState retrieves a strategy-local scratch value.
func (c *EngineContext) GetState(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// advance rolls CurrentBar into PriorBar and installs the new current bar.
// Called by the engine once per loop iteration, before OnBar.
func (c *EngineContext) advance(bar bardata.Bar) {
	if c.HasPrior || (c.CurrentBar != bardata.Bar{}) {
		c.PriorBar = c.CurrentBar
		c.HasPrior = true
	}
	c.CurrentBar = bar
}

// Advance is the exported form of advance, used by the engine package.
func (c *EngineContext) Advance(bar bardata.Bar) { c.advance(bar) }

// ExitResult signals that a strategy's OnBar call placed an order to close
// an open position, naming that order and the risk context needed to score
// it once its real fill is known. RealizedPnL and R-multiple are
// deliberately absent here: the execution engine is invoked on every
// position change, so only the portfolio's actual fill (after slippage,
// commission, spread, and impact) determines realized P&L. The engine
// resolves R-multiple from that fill and this context, not from a
// strategy-estimated price.
type ExitResult struct {
	Symbol                string
	OrderID               uuid.UUID
	EntryATR              float64
	StopLossATRMultiplier float64
}

// ComputeRMultiple derives realized_pnl / (qty × entry_atr ×
// stop_loss_atr_multiplier), the R-multiple of a closed trade against its
// initial risk; undefined (0) when the denominator is non-positive.
func ComputeRMultiple(realizedPnL, qty, entryATR, stopLossATRMultiplier float64) float64 {
	denom := qty * entryATR * stopLossATRMultiplier
	if denom <= 0 {
		return 0
	}
	return realizedPnL / denom
}

// BarProcessResult is OnBar's return value: any exit that occurred this
// bar, for the engine to forward to the metrics pipeline.
type BarProcessResult struct {
	Exit *ExitResult
}

// Strategy is the fixed polymorphic contract every backtested strategy
// implements. Construction is factory-based: a zero-argument closure
// produces a fresh instance per sweep point, so no strategy holds state
// shared across runs.
type Strategy interface {
	OnStart(ctx *EngineContext) error
	OnBar(bar bardata.Bar, ctx *EngineContext) (BarProcessResult, error)
	OnFinish(ctx *EngineContext) error
	SetParams(params map[string]float64) error
}

// Factory constructs a fresh Strategy instance, used by the sweep driver to
// guarantee share-nothing parallelism across parameter points.
type Factory func() Strategy
