// FILE: execution.go
// Package execution composes slippage, spread, market-impact, and commission
// models into a single deterministic fill transformation: reference market
// price + volume in, Fill out. No partial fills: an order either fills in
// full at the computed price or is rejected upstream by the portfolio.
package execution

import "github.com/chidi150c/backtestlab/internal/bardata"

// Side mirrors the order side convention used across the engine.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order is the minimal shape the execution engine needs to price a fill.
// The portfolio owns the richer Order lifecycle type; this is a narrow view.
type Order struct {
	Symbol string
	Side   Side
	Qty    float64
}

// Fill is the deterministic result of executing an Order against a market
// price and volume.
type Fill struct {
	Symbol     string
	Side       Side
	Qty        float64
	FillPrice  float64
	Commission float64
}

// sideSign returns +1 for BUY (price moves against the buyer, i.e. up) and
// -1 for SELL.
func sideSign(s Side) float64 {
	if s == SideSell {
		return -1
	}
	return 1
}

// Engine composes the four pluggable cost models plus a spread, in basis
// points. Zero-value Engine fields fall back to identity (no-op) behavior.
type Engine struct {
	SpreadBps float64
	Slippage  SlippageModel
	Impact    MarketImpactModel
	Commish   CommissionModel
}

// NewEngine builds an Engine with explicit models and spread. Pass nil for
// any model to use its identity default.
func NewEngine(spreadBps float64, slip SlippageModel, impact MarketImpactModel, comm CommissionModel) *Engine {
	if slip == nil {
		slip = NoSlippage{}
	}
	if impact == nil {
		impact = NoImpact{}
	}
	if comm == nil {
		comm = NoCommission{}
	}
	return &Engine{SpreadBps: spreadBps, Slippage: slip, Impact: impact, Commish: comm}
}

// Execute prices an order against marketPrice and the bar's volume, per the
// fixed seven-step algorithm: spread, slippage, impact compose additively
// into the fill price, then commission is computed on the resulting price.
func (e *Engine) Execute(order Order, marketPrice, volume float64) Fill {
	sign := sideSign(order.Side)

	halfSpread := marketPrice * e.SpreadBps / 20_000
	base := marketPrice + sign*halfSpread

	slip := e.slippage().Amount(order, marketPrice, volume)
	imp := e.impact().Amount(order, marketPrice, volume)

	fillPrice := base + sign*slip + sign*imp

	comm := e.commission().Amount(order, fillPrice)
	if comm < 0 {
		comm = 0
	}

	return Fill{
		Symbol:     order.Symbol,
		Side:       order.Side,
		Qty:        order.Qty,
		FillPrice:  fillPrice,
		Commission: comm,
	}
}

func (e *Engine) slippage() SlippageModel {
	if e.Slippage == nil {
		return NoSlippage{}
	}
	return e.Slippage
}

func (e *Engine) impact() MarketImpactModel {
	if e.Impact == nil {
		return NoImpact{}
	}
	return e.Impact
}

func (e *Engine) commission() CommissionModel {
	if e.Commish == nil {
		return NoCommission{}
	}
	return e.Commish
}

// BarVolume is a convenience accessor for callers that source volume from a
// bardata.Bar rather than an explicit number.
func BarVolume(b bardata.Bar) float64 { return b.Volume }
