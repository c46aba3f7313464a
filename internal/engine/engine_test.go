package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/execution"
	"github.com/chidi150c/backtestlab/internal/killswitch"
	"github.com/chidi150c/backtestlab/internal/strategy"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// buyAndHoldStrategy buys once on the first bar and never exits, used to
// exercise forced close at the final bar.
type buyAndHoldStrategy struct {
	symbol string
	qty    float64
	bought bool
}

func (s *buyAndHoldStrategy) OnStart(*strategy.EngineContext) error  { return nil }
func (s *buyAndHoldStrategy) OnFinish(*strategy.EngineContext) error { return nil }
func (s *buyAndHoldStrategy) SetParams(map[string]float64) error     { return nil }

func (s *buyAndHoldStrategy) OnBar(bar bardata.Bar, ctx *strategy.EngineContext) (strategy.BarProcessResult, error) {
	if !s.bought {
		ctx.Orders.PlaceBuy(s.symbol, s.qty, bar.Time)
		s.bought = true
	}
	return strategy.BarProcessResult{}, nil
}

func barsAt(symbol string, closes []float64, start time.Time, step time.Duration) []bardata.Bar {
	bars := make([]bardata.Bar, len(closes))
	for i, c := range closes {
		bars[i] = bardata.Bar{
			Time:   start.Add(time.Duration(i) * step),
			Symbol: symbol,
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func TestEngine_ForcedCloseAtFinalBar(t *testing.T) {
	symbol := "BTC-USD"
	bars := barsAt(symbol, []float64{100, 101, 102, 105}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Minute)
	src := bardata.NewSliceSource(bars)

	strat := &buyAndHoldStrategy{symbol: symbol, qty: 10}
	exec := execution.NewEngine(0, nil, nil, nil)

	eng, err := New(Config{
		Symbol:              symbol,
		InitialCash:         100_000,
		ATRPeriod:           2,
		PriceBufferCapacity: 5,
	}, src, exec, strat, nil, nil, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, ok := res.Portfolio.Position(symbol); ok {
		t.Fatalf("expected position force-closed at end of run")
	}
	if len(res.TradeLedger) != 2 {
		t.Fatalf("expected 2 ledger entries (entry fill + forced close), got %d", len(res.TradeLedger))
	}
	// bought at bar[1]'s close=101 (next-bar market execution), forced
	// closed at the final bar's close=105: 10 * (105-101) = 40.
	closing := res.TradeLedger[1]
	if !closing.Closing {
		t.Fatalf("second ledger entry is not the closing leg: %+v", closing)
	}
	if !approx(closing.RealizedPnL, 40, 1e-6) {
		t.Errorf("realized pnl = %v, want 40", closing.RealizedPnL)
	}
}

func TestEngine_EquityCurveStrictlyIncreasingTimestamps(t *testing.T) {
	symbol := "ETH-USD"
	bars := barsAt(symbol, []float64{10, 11, 12, 13, 14}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Minute)
	src := bardata.NewSliceSource(bars)

	strat := &buyAndHoldStrategy{symbol: symbol, qty: 1}
	exec := execution.NewEngine(0, nil, nil, nil)

	eng, err := New(Config{
		Symbol:              symbol,
		InitialCash:         10_000,
		ATRPeriod:           2,
		PriceBufferCapacity: 5,
	}, src, exec, strat, nil, nil, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	curve := res.EquityCurve
	for i := 1; i < len(curve); i++ {
		if !curve[i].Time.After(curve[i-1].Time) {
			t.Fatalf("equity curve timestamps not strictly increasing at index %d", i)
		}
	}
}

func TestEngine_KillSwitchStopsLoopBeforeNextBar(t *testing.T) {
	symbol := "BTC-USD"
	// Entry fills at bar[1]'s close=100 (next-bar market execution); bar[2]
	// closes at 70, marking equity to 7,000 and tripping a $2,000 loss
	// limit before that bar's order execution/equity recording run.
	bars := barsAt(symbol, []float64{100, 100, 70, 200}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Minute)
	src := bardata.NewSliceSource(bars)

	strat := &buyAndHoldStrategy{symbol: symbol, qty: 100}
	exec := execution.NewEngine(0, nil, nil, nil)
	ks := killswitch.NewManager(killswitch.NewLossTrigger(10_000, 2_000))

	eng, err := New(Config{
		Symbol:              symbol,
		InitialCash:         10_000,
		ATRPeriod:           2,
		PriceBufferCapacity: 5,
	}, src, exec, strat, ks, nil, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !res.KillSwitches.Tripped() {
		t.Fatalf("expected a kill switch to have tripped")
	}
	if res.KillSwitches.Activated[0].Name != "loss" {
		t.Errorf("expected loss trigger to be the one reported, got %q", res.KillSwitches.Activated[0].Name)
	}
	if len(res.EquityCurve) != 2 {
		t.Fatalf("expected exactly 2 equity points before the trip, got %d", len(res.EquityCurve))
	}
	if !approx(res.EquityCurve[len(res.EquityCurve)-1].Equity, 10_000, 1e-6) {
		t.Errorf("last recorded equity = %v, want 10000 (pre-loss mark)", res.EquityCurve[len(res.EquityCurve)-1].Equity)
	}
}
