package atrbreakout

import (
	"math"
	"testing"

	"github.com/chidi150c/backtestlab/internal/atr"
	"github.com/chidi150c/backtestlab/internal/trailstop"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestRMultiple_KnownValues(t *testing.T) {
	a := atr.NewATRState(2)
	a.Update(100.5, 99.5, 100)
	a.Update(101.5, 100.5, 100.5)
	if got := a.Value(); !approx(got, 1.0, 1e-9) {
		t.Fatalf("ATR = %v, want 1.0", got)
	}

	realized := RealizedPnL(trailstop.SideLong, 1000, 100, 101.25)
	if !approx(realized, 1250, 1e-9) {
		t.Fatalf("realized P&L = %v, want 1250", realized)
	}

	r := RMultiple(realized, 1000, 1.0, 1)
	if !approx(r, 1.25, 1e-9) {
		t.Errorf("R-multiple = %v, want 1.25", r)
	}
}

func TestRMultiple_UndefinedDenominatorIsZero(t *testing.T) {
	if r := RMultiple(500, 10, 0, 2); r != 0 {
		t.Errorf("R-multiple with zero ATR = %v, want 0", r)
	}
	if r := RMultiple(500, 10, -1, 2); r != 0 {
		t.Errorf("R-multiple with negative ATR = %v, want 0", r)
	}
}

func TestRealizedPnL_ShortIsReversed(t *testing.T) {
	got := RealizedPnL(trailstop.SideShort, 100, 50, 45)
	if !approx(got, 500, 1e-9) {
		t.Errorf("short realized P&L = %v, want 500", got)
	}
}

// No entry may occur before the price buffer holds lookback entries.
func TestNoEntryWithoutEnoughBufferHistory(t *testing.T) {
	s := New("BTC-USD")
	s.params.Lookback = 20
	s.params.MinATRThreshold = 0

	ctx := newTestContext(t, s.params.Lookback)
	for i := 0; i < 5; i++ {
		bar := testBar(float64(100+i), float64(102+i), float64(98+i), float64(101+i))
		res, err := s.OnBar(bar, ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Exit != nil {
			t.Fatalf("unexpected exit before any entry")
		}
	}
	if s.pos != nil {
		t.Errorf("position opened before buffer had enough data")
	}
}
