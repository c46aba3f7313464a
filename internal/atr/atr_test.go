package atr

import (
	"math"
	"testing"
)

func TestATRState_ConstantTrueRangeConverges(t *testing.T) {
	a := NewATRState(3)
	// Each update has high-low = 2, and prevClose chosen so that high-low is
	// always the dominant term, so true range is constant at 2 every bar.
	prev := 100.0
	for i := 0; i < 10; i++ {
		high := prev + 1
		low := prev - 1
		a.Update(high, low, prev)
		prev = (high + low) / 2
	}
	if got := a.Value(); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("ATR = %v, want 2.0", got)
	}
	if !a.HasEnoughSamples(3) {
		t.Errorf("expected HasEnoughSamples(3) true after 10 updates")
	}
}

func TestATRState_WindowSlidesOverPeriod(t *testing.T) {
	a := NewATRState(2)
	a.Update(110, 100, 100) // tr = 10
	a.Update(105, 100, 105) // tr = 5
	if got := a.Value(); math.Abs(got-7.5) > 1e-9 {
		t.Errorf("ATR after 2 samples = %v, want 7.5", got)
	}
	a.Update(103, 100, 103) // tr = 3, evicts the first 10
	if got := a.Value(); math.Abs(got-4.0) > 1e-9 {
		t.Errorf("ATR after eviction = %v, want 4.0", got)
	}
	if a.SampleCount() != 2 {
		t.Errorf("SampleCount = %d, want 2 (capped at period)", a.SampleCount())
	}
}

func TestATRState_NoSamplesIsZero(t *testing.T) {
	a := NewATRState(5)
	if a.Value() != 0 {
		t.Errorf("Value with no samples = %v, want 0", a.Value())
	}
	if a.HasEnoughSamples(1) {
		t.Errorf("HasEnoughSamples(1) should be false with zero samples")
	}
}

func TestTrueRange_GapUpDominates(t *testing.T) {
	// Gap up: prevClose far below today's low, so |high-prevClose| (20)
	// dominates |low-prevClose| (18) and high-low (2).
	tr := trueRange(110, 108, 90)
	if math.Abs(tr-20) > 1e-9 {
		t.Errorf("trueRange = %v, want 20", tr)
	}
}

func TestPriceBuffer_EmptyReturnsSentinels(t *testing.T) {
	p := NewPriceBuffer(5)
	if p.HasEnoughData(1) {
		t.Errorf("expected HasEnoughData(1) false when empty")
	}
	if hh := p.HighestHigh(1); hh != 0 {
		t.Errorf("HighestHigh on empty buffer = %v, want 0", hh)
	}
	if ll := p.LowestLow(1); !math.IsInf(ll, 1) {
		t.Errorf("LowestLow on empty buffer = %v, want +Inf", ll)
	}
}

func TestPriceBuffer_LookbackAndEviction(t *testing.T) {
	p := NewPriceBuffer(3)
	p.Append(10, 5, 8)
	p.Append(20, 4, 18)
	p.Append(15, 6, 14)
	if got := p.HighestHigh(3); got != 20 {
		t.Errorf("HighestHigh(3) = %v, want 20", got)
	}
	if got := p.LowestLow(3); got != 4 {
		t.Errorf("LowestLow(3) = %v, want 4", got)
	}
	// Evict the first entry (10,5,8).
	p.Append(12, 11, 11)
	if p.Size() != 3 {
		t.Fatalf("Size = %d, want 3 (capacity-bound)", p.Size())
	}
	if got := p.HighestHigh(3); got != 20 {
		t.Errorf("HighestHigh(3) after eviction = %v, want 20 (only (10,5) evicted)", got)
	}
	if got := p.LowestLow(3); got != 4 {
		t.Errorf("LowestLow(3) after eviction = %v, want 4 (only (10,5) evicted)", got)
	}
}

func TestPriceBuffer_LookbackClampsToSize(t *testing.T) {
	p := NewPriceBuffer(10)
	p.Append(10, 5, 8)
	p.Append(20, 1, 18)
	// Only 2 entries exist; lookback of 100 should clamp to 2.
	if got := p.HighestHigh(100); got != 20 {
		t.Errorf("HighestHigh(100) = %v, want 20 (clamped to size 2)", got)
	}
	if got := p.LowestLow(100); got != 1 {
		t.Errorf("LowestLow(100) = %v, want 1 (clamped to size 2)", got)
	}
}

func TestPriceBuffer_LookbackOne(t *testing.T) {
	p := NewPriceBuffer(5)
	p.Append(10, 5, 8)
	p.Append(20, 1, 18)
	if got := p.HighestHigh(1); got != 20 {
		t.Errorf("HighestHigh(1) = %v, want 20 (most recent only)", got)
	}
	if got := p.LowestLow(1); got != 1 {
		t.Errorf("LowestLow(1) = %v, want 1 (most recent only)", got)
	}
}
