package execution

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestExecute_ZeroCostModelsNoOp(t *testing.T) {
	e := NewEngine(0, nil, nil, nil)
	fill := e.Execute(Order{Symbol: "BTC-USD", Side: SideBuy, Qty: 100}, 100, 1_000_000)
	if !approxEqual(fill.FillPrice, 100, 1e-9) {
		t.Errorf("fill price = %v, want 100", fill.FillPrice)
	}
	if fill.Commission != 0 {
		t.Errorf("commission = %v, want 0", fill.Commission)
	}
}

func TestExecute_SpreadRaisesBuyLowersSell(t *testing.T) {
	e := NewEngine(100, nil, nil, nil) // 100 bps spread -> half-spread = 0.5% of price
	buy := e.Execute(Order{Side: SideBuy, Qty: 1}, 100, 1000)
	sell := e.Execute(Order{Side: SideSell, Qty: 1}, 100, 1000)
	if !approxEqual(buy.FillPrice, 100.5, 1e-9) {
		t.Errorf("buy fill price = %v, want 100.5", buy.FillPrice)
	}
	if !approxEqual(sell.FillPrice, 99.5, 1e-9) {
		t.Errorf("sell fill price = %v, want 99.5", sell.FillPrice)
	}
}

func TestExecute_VolumeTieredSlippageCrossover(t *testing.T) {
	tiers := NewVolumeTieredSlippage([]VolumeTier{
		{Threshold: 0, Bps: 5},
		{Threshold: 500_000, Bps: 15},
	})
	e := NewEngine(0, tiers, nil, nil)

	lowVol := e.Execute(Order{Side: SideBuy, Qty: 1000}, 100, 400_000)
	if !approxEqual(lowVol.FillPrice, 100.05, 1e-9) {
		t.Errorf("low-volume fill price = %v, want 100.05", lowVol.FillPrice)
	}

	highVol := e.Execute(Order{Side: SideBuy, Qty: 1000}, 100, 1_000_000)
	if !approxEqual(highVol.FillPrice, 100.15, 1e-9) {
		t.Errorf("high-volume fill price = %v, want 100.15", highVol.FillPrice)
	}
}

func TestExecute_SellAdjustmentsSubtract(t *testing.T) {
	e := NewEngine(0, PercentageSlippage{Bps: 50}, nil, nil)
	sell := e.Execute(Order{Side: SideSell, Qty: 10}, 100, 1000)
	if !approxEqual(sell.FillPrice, 99.5, 1e-9) {
		t.Errorf("sell fill price with slippage = %v, want 99.5", sell.FillPrice)
	}
}

func TestExecute_CommissionFloor(t *testing.T) {
	e := NewEngine(0, nil, nil, PerShareCommission{PerShare: 0.001, Floor: 1.0})
	fill := e.Execute(Order{Side: SideBuy, Qty: 10}, 100, 1000)
	if fill.Commission != 1.0 {
		t.Errorf("commission = %v, want floor 1.0", fill.Commission)
	}
}

func TestExecute_CommissionNeverNegative(t *testing.T) {
	e := NewEngine(0, nil, nil, PercentageCommission{Bps: -100, Floor: -5})
	fill := e.Execute(Order{Side: SideBuy, Qty: 10}, 100, 1000)
	if fill.Commission < 0 {
		t.Errorf("commission = %v, must never be negative", fill.Commission)
	}
}

func TestLinearImpact_ZeroVolumeIsZero(t *testing.T) {
	l := LinearImpact{Rate: 1}
	if got := l.Amount(Order{Qty: 100}, 100, 0); got != 0 {
		t.Errorf("LinearImpact with zero volume = %v, want 0", got)
	}
}

func TestSqrtImpact_Scales(t *testing.T) {
	s := SqrtImpact{Coefficient: 0.1}
	small := s.Amount(Order{Qty: 100}, 100, 10_000)
	large := s.Amount(Order{Qty: 900}, 100, 10_000)
	if !(large > small) {
		t.Errorf("sqrt impact should increase with qty: small=%v large=%v", small, large)
	}
}
