package killswitch

import (
	"fmt"
	"math"
	"time"
)

// VolatilityTrigger accumulates per-bar returns and trips when the
// annualized stdev of the trailing window reaches maxVol, once at least 10
// observations exist. lookbackBars counts bars, not calendar days; callers
// map bar cadence to a "trading day" equivalent (e.g. 1440 one-minute bars
// per day) when sizing it.
type VolatilityTrigger struct {
	latch
	maxVol       float64
	lookbackBars int
	prevEquity   float64
	haveSeed     bool
	returns      []float64
}

func NewVolatilityTrigger(maxVol float64, lookbackBars int) *VolatilityTrigger {
	return &VolatilityTrigger{maxVol: maxVol, lookbackBars: lookbackBars}
}

func (v *VolatilityTrigger) Name() string { return "volatility" }

func (v *VolatilityTrigger) Check(totalValue float64, _ map[string]float64, at time.Time) bool {
	if v.activated {
		return true
	}
	if !v.haveSeed {
		v.prevEquity = totalValue
		v.haveSeed = true
		return false
	}
	if v.prevEquity != 0 {
		v.returns = append(v.returns, totalValue/v.prevEquity-1)
	}
	v.prevEquity = totalValue

	window := v.returns
	if len(window) > v.lookbackBars {
		window = window[len(window)-v.lookbackBars:]
	}
	if len(window) < 10 {
		return false
	}

	m := 0.0
	for _, r := range window {
		m += r
	}
	m /= float64(len(window))
	var sumSq float64
	for _, r := range window {
		d := r - m
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(len(window)))
	annualized := sd * math.Sqrt(252)
	if annualized >= v.maxVol {
		return v.trip(at, fmt.Sprintf("annualized volatility %.6f >= max %.6f", annualized, v.maxVol))
	}
	return false
}

func (v *VolatilityTrigger) Reset() {
	v.reset()
	v.prevEquity = 0
	v.haveSeed = false
	v.returns = nil
}
