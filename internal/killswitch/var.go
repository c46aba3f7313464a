package killswitch

import (
	"fmt"
	"sort"
	"time"
)

// VaRTrigger tracks per-bar returns and trips when the most recent return
// falls below the empirical (1-confidence) quantile of the trailing window
// AND its magnitude exceeds limit. Needs at least 30 observations before it
// will ever trip.
type VaRTrigger struct {
	latch
	limit        float64
	confidence   float64
	lookbackBars int
	prevEquity   float64
	haveSeed     bool
	returns      []float64
}

func NewVaRTrigger(limit, confidence float64, lookbackBars int) *VaRTrigger {
	return &VaRTrigger{limit: limit, confidence: confidence, lookbackBars: lookbackBars}
}

func (v *VaRTrigger) Name() string { return "var" }

func (v *VaRTrigger) Check(totalValue float64, _ map[string]float64, at time.Time) bool {
	if v.activated {
		return true
	}
	if !v.haveSeed {
		v.prevEquity = totalValue
		v.haveSeed = true
		return false
	}
	var latest float64
	if v.prevEquity != 0 {
		latest = totalValue/v.prevEquity - 1
		v.returns = append(v.returns, latest)
	}
	v.prevEquity = totalValue

	window := v.returns
	if len(window) > v.lookbackBars {
		window = window[len(window)-v.lookbackBars:]
	}
	if len(window) < 30 {
		return false
	}

	sorted := make([]float64, len(window))
	copy(sorted, window)
	sort.Float64s(sorted)
	idx := int((1 - v.confidence) * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	quantile := sorted[idx]

	if latest <= quantile && -latest >= v.limit {
		return v.trip(at, fmt.Sprintf("return %.6f below %.0f%% quantile %.6f, magnitude exceeds limit %.6f", latest, v.confidence*100, quantile, v.limit))
	}
	return false
}

func (v *VaRTrigger) Reset() {
	v.reset()
	v.prevEquity = 0
	v.haveSeed = false
	v.returns = nil
}
