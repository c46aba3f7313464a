package killswitch

import (
	"fmt"
	"time"
)

// LossTrigger trips when initial_cash - equity >= maxLossDollars.
type LossTrigger struct {
	latch
	initialCash    float64
	maxLossDollars float64
}

func NewLossTrigger(initialCash, maxLossDollars float64) *LossTrigger {
	return &LossTrigger{initialCash: initialCash, maxLossDollars: maxLossDollars}
}

func (l *LossTrigger) Name() string { return "loss" }

func (l *LossTrigger) Check(totalValue float64, _ map[string]float64, at time.Time) bool {
	if l.activated {
		return true
	}
	loss := l.initialCash - totalValue
	if loss >= l.maxLossDollars {
		return l.trip(at, fmt.Sprintf("loss %.2f >= max %.2f", loss, l.maxLossDollars))
	}
	return false
}

func (l *LossTrigger) Reset() { l.reset() }
