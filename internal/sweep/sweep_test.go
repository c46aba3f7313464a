package sweep

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/engine"
	"github.com/chidi150c/backtestlab/internal/execution"
	"github.com/chidi150c/backtestlab/internal/killswitch"
	"github.com/chidi150c/backtestlab/internal/strategy"
)

func newTestRNG() *rand.Rand { return rand.New(rand.NewSource(42)) }

func TestParameterSpace_CartesianProduct(t *testing.T) {
	ps := NewParameterSpace().Add("a", 1, 2).Add("b", 10, 20, 30)

	points, err := ps.CartesianProduct()
	if err != nil {
		t.Fatalf("CartesianProduct: %v", err)
	}
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	// Last-added parameter varies fastest.
	want := []Point{
		{"a": 1, "b": 10}, {"a": 1, "b": 20}, {"a": 1, "b": 30},
		{"a": 2, "b": 10}, {"a": 2, "b": 20}, {"a": 2, "b": 30},
	}
	for i, w := range want {
		if points[i]["a"] != w["a"] || points[i]["b"] != w["b"] {
			t.Errorf("point %d = %v, want %v", i, points[i], w)
		}
	}
}

func TestParameterSpace_CartesianProduct_EmptySpace(t *testing.T) {
	if _, err := NewParameterSpace().CartesianProduct(); err == nil {
		t.Fatal("expected error for empty parameter space")
	}
}

func TestParameterSpace_RandomSample_FullWhenNExceedsProduct(t *testing.T) {
	ps := NewParameterSpace().Add("a", 1, 2)
	rng := newTestRNG()
	sample, err := ps.RandomSample(100, rng)
	if err != nil {
		t.Fatalf("RandomSample: %v", err)
	}
	if len(sample) != 2 {
		t.Fatalf("expected full product of 2 when n exceeds size, got %d", len(sample))
	}
}

func TestParameterSpace_RandomSample_WithoutReplacement(t *testing.T) {
	ps := NewParameterSpace().Add("a", 1, 2, 3, 4, 5)
	rng := newTestRNG()
	sample, err := ps.RandomSample(3, rng)
	if err != nil {
		t.Fatalf("RandomSample: %v", err)
	}
	if len(sample) != 3 {
		t.Fatalf("expected 3 points, got %d", len(sample))
	}
	seen := make(map[float64]bool)
	for _, pt := range sample {
		if seen[pt["a"]] {
			t.Fatalf("duplicate value %v drawn without replacement", pt["a"])
		}
		seen[pt["a"]] = true
	}
}

// qtyStrategy buys a parameterized quantity on the first bar and never
// exits, enough to drive distinct objective values across sweep points.
type qtyStrategy struct {
	symbol string
	qty    float64
	bought bool
}

func (s *qtyStrategy) OnStart(*strategy.EngineContext) error  { return nil }
func (s *qtyStrategy) OnFinish(*strategy.EngineContext) error { return nil }
func (s *qtyStrategy) SetParams(p map[string]float64) error {
	s.qty = p["qty"]
	return nil
}
func (s *qtyStrategy) OnBar(bar bardata.Bar, ctx *strategy.EngineContext) (strategy.BarProcessResult, error) {
	if !s.bought && s.qty > 0 {
		ctx.Orders.PlaceBuy(s.symbol, s.qty, bar.Time)
		s.bought = true
	}
	return strategy.BarProcessResult{}, nil
}

func testBars(symbol string) []bardata.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 101, 103, 106, 110, 109, 112}
	bars := make([]bardata.Bar, len(closes))
	for i, c := range closes {
		bars[i] = bardata.Bar{
			Time: start.Add(time.Duration(i) * time.Minute), Symbol: symbol,
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1_000_000,
		}
	}
	return bars
}

func TestRun_EvaluatesEveryPointAndRanks(t *testing.T) {
	symbol := "BTC-USD"
	ps := NewParameterSpace().Add("qty", 1, 2, 3)
	points, err := ps.CartesianProduct()
	if err != nil {
		t.Fatalf("CartesianProduct: %v", err)
	}

	build := func(pt Point) (engine.Config, bardata.DataSource, *execution.Engine, *killswitch.Manager, error) {
		cfg := engine.Config{
			Symbol: symbol, InitialCash: 100_000, ATRPeriod: 2, PriceBufferCapacity: 5,
		}
		return cfg, bardata.NewSliceSource(testBars(symbol)), execution.NewEngine(0, nil, nil, nil), nil, nil
	}

	results, err := Run(context.Background(), Config{
		Points:   points,
		Strategy: func() strategy.Strategy { return &qtyStrategy{symbol: symbol} },
		Build:    build,
		Workers:  2,
		Log:      zerolog.Nop(),
	})
	require.NoError(t, err, "Run")
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Success, "point %v failed: %v", r.Parameters, r.Err)
	}

	best := Best(results)
	require.NotNil(t, best, "expected a best result")
	// A bigger long position on a rising price series should score no
	// worse than a smaller one under an identical, frictionless fill model.
	assert.Equal(t, float64(3), best.Parameters["qty"], "expected qty=3 to be the best point")
}

func TestRun_RecordsFailureWithoutAbortingSweep(t *testing.T) {
	points := []Point{{"qty": 1}}
	build := func(pt Point) (engine.Config, bardata.DataSource, *execution.Engine, *killswitch.Manager, error) {
		return engine.Config{}, nil, nil, nil, nil // missing symbol/cash -> engine.New fails
	}

	results, err := Run(context.Background(), Config{
		Points:   points,
		Strategy: func() strategy.Strategy { return &qtyStrategy{symbol: "X"} },
		Build:    build,
		Log:      zerolog.Nop(),
	})
	require.NoError(t, err, "Run")
	require.Len(t, results, 1)
	assert.False(t, results[0].Success, "expected the point to fail")
	assert.True(t, math.IsInf(results[0].Objective, -1), "expected objective -Inf on failure, got %v", results[0].Objective)
}

func TestSensitivity_GroupsByParameterValue(t *testing.T) {
	results := []PointResult{
		{Success: true, Parameters: Point{"qty": 1}, Objective: 1.0},
		{Success: true, Parameters: Point{"qty": 1}, Objective: 3.0},
		{Success: true, Parameters: Point{"qty": 2}, Objective: 5.0},
		{Success: false, Parameters: Point{"qty": 2}, Objective: math.Inf(-1)},
	}
	rows := Sensitivity(results, []string{"qty"})
	if len(rows) != 2 {
		t.Fatalf("expected 2 sensitivity rows, got %d", len(rows))
	}
	if rows[0].Value != 1 || rows[0].Count != 2 || !approx(rows[0].Mean, 2.0, 1e-9) {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Value != 2 || rows[1].Count != 1 {
		t.Errorf("row 1 = %+v, expected the failed point excluded", rows[1])
	}
}

func TestCorrelation_ConstantColumnIsNaN(t *testing.T) {
	results := []PointResult{
		{Success: true, Parameters: Point{"qty": 1}, Objective: 1.0},
		{Success: true, Parameters: Point{"qty": 1}, Objective: 2.0},
	}
	m := Correlation(results, []string{"qty"})
	if !math.IsNaN(m.Values[0][1]) {
		t.Errorf("expected NaN correlation for a constant parameter column, got %v", m.Values[0][1])
	}
}

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }
