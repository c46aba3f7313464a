package metrics

import (
	"time"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
)

// Drawdown tracks the running peak, current drawdown, and the maximum
// drawdown plus its duration in bar count. A drawdown period ends when a
// new peak is set.
type Drawdown struct {
	peak           float64
	current        float64
	maxDrawdown    float64
	barsSincePeak  int
	maxDuration    int
	initialized    bool
}

func NewDrawdown() *Drawdown { return &Drawdown{} }

func (d *Drawdown) Name() string { return "drawdown" }

func (d *Drawdown) Initialize(initialCash float64) {
	d.peak = initialCash
	d.current = 0
	d.maxDrawdown = 0
	d.barsSincePeak = 0
	d.maxDuration = 0
	d.initialized = true
}

func (d *Drawdown) OnBar(_ time.Time, equity float64, _ bardata.Bar) {
	if !d.initialized {
		d.peak = equity
		d.initialized = true
	}
	if equity > d.peak {
		d.peak = equity
		d.barsSincePeak = 0
	} else {
		d.barsSincePeak++
	}
	if d.peak > 0 {
		d.current = (equity - d.peak) / d.peak
	}
	if d.current < d.maxDrawdown {
		d.maxDrawdown = d.current
	}
	if d.barsSincePeak > d.maxDuration {
		d.maxDuration = d.barsSincePeak
	}
}

func (d *Drawdown) OnTrade(portfolio.TradeLedgerEntry) {}

func (d *Drawdown) Snapshot() map[string]float64 {
	return map[string]float64{
		"current_drawdown":    d.current,
		"max_drawdown":        d.maxDrawdown,
		"max_drawdown_bars":   float64(d.maxDuration),
	}
}

func (d *Drawdown) Reset() {
	d.peak = 0
	d.current = 0
	d.maxDrawdown = 0
	d.barsSincePeak = 0
	d.maxDuration = 0
	d.initialized = false
}
