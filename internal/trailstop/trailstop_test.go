package trailstop

import (
	"testing"

	"github.com/chidi150c/backtestlab/internal/bardata"
)

func TestDistance_DisabledIsZero(t *testing.T) {
	cfg := Config{Enabled: false}
	if d := Distance(cfg, 5, 10); d != 0 {
		t.Errorf("distance = %v, want 0 when disabled", d)
	}
}

func TestDistance_StaticUsesEntryATR(t *testing.T) {
	cfg := Config{Enabled: true, UseDynamic: false, EntryATR: 2.0}
	if d := Distance(cfg, 9.0, 100); d != 2.0 {
		t.Errorf("distance = %v, want entry ATR 2.0", d)
	}
}

func TestDistance_DynamicUsesCurrentATRWhenEnoughSamples(t *testing.T) {
	cfg := Config{Enabled: true, UseDynamic: true, MinSamples: 2, EntryATR: 1.0}
	if d := Distance(cfg, 3.0, 2); d != 3.0 {
		t.Errorf("distance = %v, want current ATR 3.0", d)
	}
}

func TestDistance_DynamicFallsBackWithoutEnoughSamples(t *testing.T) {
	cfg := Config{Enabled: true, UseDynamic: true, MinSamples: 5, EntryATR: 1.0}
	if d := Distance(cfg, 3.0, 2); d != 1.0 {
		t.Errorf("distance = %v, want entry ATR fallback 1.0", d)
	}
}

// Dynamic trailing distance is non-static across bars once enough ATR
// samples accumulate.
func TestDistance_DynamicGrowsPastStaticBaseline(t *testing.T) {
	cfg := Config{Enabled: true, UseDynamic: true, MinSamples: 2, EntryATR: 1.0}
	staticCfg := Config{Enabled: true, UseDynamic: false, EntryATR: 1.0}

	atrSeries := []float64{1.0, 1.0, 1.5, 2.2} // entry ATR then growing
	sampleCount := 2
	sawLarger := false
	for _, atr := range atrSeries {
		dyn := Distance(cfg, atr, sampleCount)
		stat := Distance(staticCfg, atr, sampleCount)
		if dyn > stat {
			sawLarger = true
		}
	}
	if !sawLarger {
		t.Errorf("expected at least one bar where dynamic distance exceeds static baseline")
	}
}

func TestState_LongRatchetIsMonotonicUpward(t *testing.T) {
	s := NewState(SideLong)
	s.Update(100, 5) // stop = 95
	if s.StopPrice != 95 {
		t.Fatalf("stop = %v, want 95", s.StopPrice)
	}
	s.Update(90, 5) // candidate 85 < 95, should not move down
	if s.StopPrice != 95 {
		t.Errorf("long stop moved down: %v", s.StopPrice)
	}
	s.Update(110, 5) // candidate 105 > 95, should move up
	if s.StopPrice != 105 {
		t.Errorf("long stop = %v, want 105", s.StopPrice)
	}
}

func TestState_ShortRatchetIsMonotonicDownward(t *testing.T) {
	s := NewState(SideShort)
	s.Update(100, 5) // stop = 105
	if s.StopPrice != 105 {
		t.Fatalf("stop = %v, want 105", s.StopPrice)
	}
	s.Update(110, 5) // candidate 115 > 105, should not move up
	if s.StopPrice != 105 {
		t.Errorf("short stop moved up: %v", s.StopPrice)
	}
	s.Update(90, 5) // candidate 95 < 105, should move down
	if s.StopPrice != 95 {
		t.Errorf("short stop = %v, want 95", s.StopPrice)
	}
}

func TestState_CheckHit_Long(t *testing.T) {
	s := NewState(SideLong)
	s.Update(100, 5) // stop = 95
	hit, price := s.CheckHit(bardata.Bar{High: 101, Low: 94})
	if !hit || price != 95 {
		t.Errorf("expected hit at 95, got hit=%v price=%v", hit, price)
	}
	hit, _ = s.CheckHit(bardata.Bar{High: 101, Low: 96})
	if hit {
		t.Errorf("expected no hit when low stays above stop")
	}
}

func TestState_CheckHit_Short(t *testing.T) {
	s := NewState(SideShort)
	s.Update(100, 5) // stop = 105
	hit, price := s.CheckHit(bardata.Bar{High: 106, Low: 99})
	if !hit || price != 105 {
		t.Errorf("expected hit at 105, got hit=%v price=%v", hit, price)
	}
}

func TestState_NoHitBeforeStopSet(t *testing.T) {
	s := NewState(SideLong)
	hit, _ := s.CheckHit(bardata.Bar{High: 101, Low: 1})
	if hit {
		t.Errorf("expected no hit before any stop has been set")
	}
}
