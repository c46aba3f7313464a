package killswitch

import (
	"fmt"
	"time"
)

// DrawdownTrigger trips when (peak-equity)/peak >= maxDD, tracking its own
// equity peak independently of any other processor.
type DrawdownTrigger struct {
	latch
	maxDD float64
	peak  float64
	seen  bool
}

func NewDrawdownTrigger(maxDD float64) *DrawdownTrigger {
	return &DrawdownTrigger{maxDD: maxDD}
}

func (d *DrawdownTrigger) Name() string { return "drawdown" }

func (d *DrawdownTrigger) Check(totalValue float64, _ map[string]float64, at time.Time) bool {
	if d.activated {
		return true
	}
	if !d.seen {
		d.peak = totalValue
		d.seen = true
	}
	if totalValue > d.peak {
		d.peak = totalValue
	}
	if d.peak <= 0 {
		return false
	}
	dd := (d.peak - totalValue) / d.peak
	if dd >= d.maxDD {
		return d.trip(at, fmt.Sprintf("drawdown %.6f >= max %.6f", dd, d.maxDD))
	}
	return false
}

func (d *DrawdownTrigger) Reset() {
	d.reset()
	d.peak = 0
	d.seen = false
}
