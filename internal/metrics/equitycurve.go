package metrics

import (
	"math"
	"time"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
)

// EquityCurve records (timestamp, equity) and reports total and annualized
// return over the observed time span.
type EquityCurve struct {
	points    []float64
	first     float64
	last      float64
	firstTime time.Time
	lastTime  time.Time
	seen      bool
}

func NewEquityCurve() *EquityCurve { return &EquityCurve{} }

func (e *EquityCurve) Name() string { return "equity_curve" }

func (e *EquityCurve) Initialize(initialCash float64) {
	e.points = nil
	e.first = initialCash
	e.last = initialCash
	e.firstTime = time.Time{}
	e.lastTime = time.Time{}
	e.seen = false
}

func (e *EquityCurve) OnBar(timestamp time.Time, equity float64, _ bardata.Bar) {
	if !e.seen {
		e.first = equity
		e.firstTime = timestamp
		e.seen = true
	}
	e.points = append(e.points, equity)
	e.last = equity
	e.lastTime = timestamp
}

func (e *EquityCurve) OnTrade(portfolio.TradeLedgerEntry) {}

func (e *EquityCurve) Snapshot() map[string]float64 {
	totalReturn := 0.0
	if e.first != 0 {
		totalReturn = e.last/e.first - 1
	}
	return map[string]float64{
		"total_return":      totalReturn,
		"annualized_return": e.annualizedReturn(totalReturn),
		"final_equity":      e.last,
		"initial_equity":    e.first,
		"bar_count":         float64(len(e.points)),
	}
}

// annualizedReturn compounds the total return over the observed calendar
// span. With no measurable span (zero or one bar) it degrades to the total
// return itself rather than extrapolating from nothing.
func (e *EquityCurve) annualizedReturn(totalReturn float64) float64 {
	years := e.lastTime.Sub(e.firstTime).Hours() / (24 * 365.25)
	if years <= 0 || e.first <= 0 || e.last <= 0 {
		return totalReturn
	}
	return math.Pow(e.last/e.first, 1/years) - 1
}

func (e *EquityCurve) Reset() {
	e.points = nil
	e.firstTime = time.Time{}
	e.lastTime = time.Time{}
	e.seen = false
}
