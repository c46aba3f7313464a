// FILE: atrbreakout.go
// Package atrbreakout is the reference strategy: enter on an ATR-scaled
// breakout of recent highs/lows, manage the position with the shared
// trailing-stop engine, and size positions by risk-per-trade.
package atrbreakout

import (
	"time"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
	"github.com/chidi150c/backtestlab/internal/strategy"
	"github.com/chidi150c/backtestlab/internal/trailstop"
)

// Direction restricts which side of the breakout the strategy will trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
	DirectionBoth  Direction = "both"
)

// Params holds the strategy's tunable configuration, the natural unit of a
// sweep point's parameter map.
type Params struct {
	Symbol                string
	Lookback              int
	Multiplier            float64
	MinATRThreshold       float64
	StopLossATRMultiplier float64
	DefaultSize           float64
	MaxRiskPerTrade       float64
	PositionSizeBudget    float64
	Direction             Direction
	UseDynamicTrailing    bool
	TrailingMinSamples    int
	TrailingMultiplier    float64
}

type openPosition struct {
	side     trailstop.Side
	entry    float64
	size     float64
	entryATR float64
	stop     *trailstop.State
}

// Strategy is the ATR breakout reference implementation of the fixed
// four-method contract.
type Strategy struct {
	params Params
	pos    *openPosition
}

// New constructs an ATR breakout strategy with default parameters; call
// SetParams to override before OnStart.
func New(symbol string) *Strategy {
	return &Strategy{params: Params{
		Symbol:                symbol,
		Lookback:              20,
		Multiplier:            1.0,
		StopLossATRMultiplier: 2.0,
		DefaultSize:           1.0,
		MaxRiskPerTrade:       0.01,
		PositionSizeBudget:    100_000,
		Direction:             DirectionBoth,
		TrailingMultiplier:    2.0,
	}}
}

// NewWithParams constructs a strategy from a fully-resolved Params value,
// for callers (e.g. cmd/backtestlab run) that build params from config
// rather than a sweep point's numeric-only map.
func NewWithParams(p Params) *Strategy {
	return &Strategy{params: p}
}

func (s *Strategy) OnStart(ctx *strategy.EngineContext) error { return nil }

func (s *Strategy) OnFinish(ctx *strategy.EngineContext) error { return nil }

// SetParams overrides numeric parameters from a sweep point's map. Keys
// matching no known field are ignored; direction is not settable through
// this numeric-only map (use the typed Params field directly for that).
func (s *Strategy) SetParams(p map[string]float64) error {
	if v, ok := p["lookback"]; ok {
		s.params.Lookback = int(v)
	}
	if v, ok := p["multiplier"]; ok {
		s.params.Multiplier = v
	}
	if v, ok := p["min_atr_threshold"]; ok {
		s.params.MinATRThreshold = v
	}
	if v, ok := p["stop_loss_atr_multiplier"]; ok {
		s.params.StopLossATRMultiplier = v
	}
	if v, ok := p["default_size"]; ok {
		s.params.DefaultSize = v
	}
	if v, ok := p["max_risk_per_trade"]; ok {
		s.params.MaxRiskPerTrade = v
	}
	if v, ok := p["position_size_budget"]; ok {
		s.params.PositionSizeBudget = v
	}
	if v, ok := p["trailing_multiplier"]; ok {
		s.params.TrailingMultiplier = v
	}
	if v, ok := p["trailing_min_samples"]; ok {
		s.params.TrailingMinSamples = int(v)
	}
	return nil
}

// Params returns a copy of the strategy's current configuration.
func (s *Strategy) Params() Params { return s.params }

// OnBar implements the bar-by-bar logic fixed by the breakout contract: ATR
// and buffer update first, then exit management for an open position, then
// entry evaluation when flat.
func (s *Strategy) OnBar(bar bardata.Bar, ctx *strategy.EngineContext) (strategy.BarProcessResult, error) {
	var prevClose float64
	if ctx.HasPrior {
		prevClose = ctx.PriorBar.Close
	} else {
		prevClose = bar.Close
	}
	ctx.ATR.Update(bar.High, bar.Low, prevClose)
	ctx.PriceBuffer.Append(bar.High, bar.Low, bar.Close)

	if s.pos != nil {
		return s.manageOpenPosition(bar, ctx)
	}
	return s.evaluateEntry(bar, ctx)
}

func (s *Strategy) manageOpenPosition(bar bardata.Bar, ctx *strategy.EngineContext) (strategy.BarProcessResult, error) {
	distance := trailstop.Distance(trailstop.Config{
		Enabled:    true,
		UseDynamic: s.params.UseDynamicTrailing,
		MinSamples: s.params.TrailingMinSamples,
		EntryATR:   s.pos.entryATR * s.params.TrailingMultiplier,
	}, ctx.ATR.Value()*s.params.TrailingMultiplier, ctx.ATR.SampleCount())

	s.pos.stop.Update(bar.Close, distance)
	hit, _ := s.pos.stop.CheckHit(bar)
	if !hit {
		return strategy.BarProcessResult{}, nil
	}

	var order *portfolio.Order
	if s.pos.side == trailstop.SideLong {
		order = ctx.Orders.PlaceSell(s.params.Symbol, s.pos.size, bar.Time)
	} else {
		order = ctx.Orders.PlaceBuy(s.params.Symbol, s.pos.size, bar.Time)
	}

	exit := &strategy.ExitResult{
		Symbol:                s.params.Symbol,
		OrderID:               order.ID,
		EntryATR:              s.pos.entryATR,
		StopLossATRMultiplier: s.params.StopLossATRMultiplier,
	}
	s.pos = nil
	return strategy.BarProcessResult{Exit: exit}, nil
}

func (s *Strategy) evaluateEntry(bar bardata.Bar, ctx *strategy.EngineContext) (strategy.BarProcessResult, error) {
	if !ctx.ATR.HasEnoughSamples(ctx.ATR.Period()) {
		return strategy.BarProcessResult{}, nil
	}
	if !ctx.PriceBuffer.HasEnoughData(s.params.Lookback) {
		return strategy.BarProcessResult{}, nil
	}
	atrValue := ctx.ATR.Value()
	if atrValue < s.params.MinATRThreshold {
		return strategy.BarProcessResult{}, nil
	}

	recentHigh := ctx.PriceBuffer.HighestHighExcludingLast(s.params.Lookback - 1)
	recentLow := ctx.PriceBuffer.LowestLowExcludingLast(s.params.Lookback - 1)

	longThreshold := recentHigh + atrValue*s.params.Multiplier
	shortThreshold := recentLow - atrValue*s.params.Multiplier

	wantsLong := s.params.Direction == DirectionLong || s.params.Direction == DirectionBoth
	wantsShort := s.params.Direction == DirectionShort || s.params.Direction == DirectionBoth

	switch {
	case wantsLong && bar.High > longThreshold:
		s.enter(trailstop.SideLong, longThreshold, atrValue, bar.Time, ctx)
	case wantsShort && bar.Low < shortThreshold:
		s.enter(trailstop.SideShort, shortThreshold, atrValue, bar.Time, ctx)
	}
	return strategy.BarProcessResult{}, nil
}

// RealizedPnL computes the round-trip P&L for a position side, size, entry,
// and exit price. The engine never calls this directly for trade
// accounting (it derives realized P&L from the portfolio's actual fill),
// but it's the formula strategies size and pre-trade-check against.
func RealizedPnL(side trailstop.Side, size, entry, exitPrice float64) float64 {
	if side == trailstop.SideShort {
		return size * (entry - exitPrice)
	}
	return size * (exitPrice - entry)
}

// RMultiple delegates to strategy.ComputeRMultiple for the size naming this
// package's tests use.
func RMultiple(realizedPnL, size, entryATR, stopLossATRMultiplier float64) float64 {
	return strategy.ComputeRMultiple(realizedPnL, size, entryATR, stopLossATRMultiplier)
}

func (s *Strategy) enter(side trailstop.Side, entryPrice, atrValue float64, at time.Time, ctx *strategy.EngineContext) {
	riskBudget := (s.params.PositionSizeBudget * s.params.MaxRiskPerTrade) / (atrValue * s.params.StopLossATRMultiplier)
	size := s.params.DefaultSize
	if riskBudget < size {
		size = riskBudget
	}

	stop := trailstop.NewState(side)
	initialDistance := atrValue * s.params.StopLossATRMultiplier
	stop.Update(entryPrice, initialDistance)
	if side == trailstop.SideLong {
		ctx.Orders.PlaceBuy(s.params.Symbol, size, at)
	} else {
		ctx.Orders.PlaceSell(s.params.Symbol, size, at)
	}

	s.pos = &openPosition{side: side, entry: entryPrice, size: size, entryATR: atrValue, stop: stop}
}
