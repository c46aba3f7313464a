package metrics

import (
	"math"
	"time"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
)

const tradingDaysPerYear = 252

// SharpeSortino streams per-bar equity and derives one return per bar, Sharpe
// (mean excess return / stdev of excess return, annualized by sqrt(252) as
// if each bar were one trading day; bars are not resampled to days)
// and Sortino (same, but the denominator uses only downside deviation).
// Degenerate denominators yield 0 rather than NaN/Inf.
type SharpeSortino struct {
	riskFreeDaily float64
	prevEquity    float64
	haveSeed      bool
	returns       []float64
}

// NewSharpeSortino builds the processor with an optional daily risk-free
// rate (0 is the common default for crypto/backtesting contexts).
func NewSharpeSortino(riskFreeDaily float64) *SharpeSortino {
	return &SharpeSortino{riskFreeDaily: riskFreeDaily}
}

func (s *SharpeSortino) Name() string { return "sharpe_sortino" }

func (s *SharpeSortino) Initialize(initialCash float64) {
	s.prevEquity = initialCash
	s.haveSeed = true
	s.returns = nil
}

func (s *SharpeSortino) OnBar(_ time.Time, equity float64, _ bardata.Bar) {
	if !s.haveSeed {
		s.prevEquity = equity
		s.haveSeed = true
		return
	}
	if s.prevEquity != 0 {
		s.returns = append(s.returns, equity/s.prevEquity-1)
	}
	s.prevEquity = equity
}

func (s *SharpeSortino) OnTrade(portfolio.TradeLedgerEntry) {}

func (s *SharpeSortino) Snapshot() map[string]float64 {
	return map[string]float64{
		"sharpe":  s.sharpe(),
		"sortino": s.sortino(),
	}
}

func (s *SharpeSortino) Reset() {
	s.prevEquity = 0
	s.haveSeed = false
	s.returns = nil
}

func (s *SharpeSortino) sharpe() float64 {
	if len(s.returns) == 0 {
		return 0
	}
	excess := make([]float64, len(s.returns))
	for i, r := range s.returns {
		excess[i] = r - s.riskFreeDaily
	}
	m := mean(excess)
	sd := stddev(excess, m)
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(tradingDaysPerYear)
}

func (s *SharpeSortino) sortino() float64 {
	if len(s.returns) == 0 {
		return 0
	}
	excess := make([]float64, len(s.returns))
	for i, r := range s.returns {
		excess[i] = r - s.riskFreeDaily
	}
	m := mean(excess)
	dd := downsideDeviation(s.returns, s.riskFreeDaily)
	if dd == 0 {
		return 0
	}
	return m / dd * math.Sqrt(tradingDaysPerYear)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// downsideDeviation is the stdev of returns strictly below target,
// computed over the full sample count (not just the downside subset), the
// standard MAR-relative Sortino convention.
func downsideDeviation(returns []float64, target float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var sumSq float64
	for _, r := range returns {
		if r < target {
			d := r - target
			sumSq += d * d
		}
	}
	return math.Sqrt(sumSq / float64(len(returns)))
}
