// FILE: engine.go
// Package engine implements the backtest driver (C9): the single-threaded,
// strictly causal bar loop that ties together the portfolio, execution
// engine, strategy, kill-switch manager, and metrics pipeline. No
// suspension points, no wall-clock dependence beyond logging; determinism
// comes from fixed iteration order over the data source.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chidi150c/backtestlab/internal/atr"
	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/execution"
	"github.com/chidi150c/backtestlab/internal/killswitch"
	"github.com/chidi150c/backtestlab/internal/metrics"
	"github.com/chidi150c/backtestlab/internal/obsmetrics"
	"github.com/chidi150c/backtestlab/internal/portfolio"
	"github.com/chidi150c/backtestlab/internal/strategy"
	"github.com/chidi150c/backtestlab/internal/xerrors"
)

// Config configures one backtest run. The reference ATR breakout strategy
// holds at most one open position at a time for Symbol; other symbols
// interleaved in the data source still mark-to-market via their own bars
// but do not drive the strategy callback.
type Config struct {
	Symbol              string
	InitialCash         float64
	AllowShort          bool
	ATRPeriod           int
	PriceBufferCapacity int

	// Benchmark, if non-nil, is a parallel bar stream whose buy-and-hold
	// return is reported alongside the strategy's own.
	Benchmark bardata.DataSource
}

// Engine drives the bar-by-bar simulation loop in a fixed per-bar order:
// kill-switch check, pending-order execution, equity recording, strategy
// callback, pipeline dispatch. The strategy never observes post-callback
// equity of its own bar.
type Engine struct {
	cfg          Config
	data         bardata.DataSource
	portfolio    *portfolio.Portfolio
	exec         *execution.Engine
	strat        strategy.Strategy
	killswitches *killswitch.Manager
	pipeline     *metrics.Pipeline
	log          zerolog.Logger
	runm         *obsmetrics.RunMetrics

	// exitMeta carries the risk context a strategy attached to a
	// not-yet-filled closing order (entry ATR and stop-loss multiplier),
	// keyed by order ID, so the R-multiple can be derived from that order's
	// real fill once it executes, never from the strategy's own price
	// estimate.
	exitMeta map[uuid.UUID]exitContext
}

type exitContext struct {
	EntryATR              float64
	StopLossATRMultiplier float64
}

// New validates cfg and wires an Engine. runm may be nil to disable
// Prometheus instrumentation for this run (e.g. sweep workers that report
// throughput at the sweep level instead).
func New(
	cfg Config,
	data bardata.DataSource,
	exec *execution.Engine,
	strat strategy.Strategy,
	ks *killswitch.Manager,
	pipeline *metrics.Pipeline,
	log zerolog.Logger,
	runm *obsmetrics.RunMetrics,
) (*Engine, error) {
	if cfg.InitialCash <= 0 {
		return nil, xerrors.ConfigError("initial cash must be positive")
	}
	if cfg.Symbol == "" {
		return nil, xerrors.ConfigError("symbol must be set")
	}
	if data == nil {
		return nil, xerrors.ConfigError("data source must be set")
	}
	if exec == nil {
		return nil, xerrors.ConfigError("execution engine must be set")
	}
	if strat == nil {
		return nil, xerrors.ConfigError("strategy must be set")
	}
	if ks == nil {
		ks = killswitch.NewManager()
	}
	if pipeline == nil {
		pipeline = metrics.NewDefaultPipeline()
	}

	p := portfolio.New(cfg.InitialCash)
	p.AllowShort = cfg.AllowShort

	return &Engine{
		cfg:          cfg,
		data:         data,
		portfolio:    p,
		exec:         exec,
		strat:        strat,
		killswitches: ks,
		pipeline:     pipeline,
		log:          log,
		runm:         runm,
		exitMeta:     make(map[uuid.UUID]exitContext),
	}, nil
}

// Run executes the full bar loop to completion (stream exhaustion or a
// kill-switch trip) and returns the results artifact.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	atrState := atr.NewATRState(e.cfg.ATRPeriod)
	priceBuf := atr.NewPriceBuffer(e.cfg.PriceBufferCapacity)
	ectx := strategy.NewEngineContext(e.portfolio, atrState, priceBuf, e.portfolio)

	e.pipeline.Initialize(e.cfg.InitialCash)
	if err := e.strat.OnStart(ectx); err != nil {
		return nil, fmt.Errorf("strategy on_start: %w", err)
	}
	if err := e.data.Reset(); err != nil {
		return nil, fmt.Errorf("reset data source: %w", err)
	}

	lastClose := make(map[string]float64)
	var lastBar bardata.Bar
	var haveBar bool
	tripped := false

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		bar, ok, err := e.data.Next()
		if err != nil {
			return nil, fmt.Errorf("read bar: %w", err)
		}
		if !ok {
			break
		}
		if err := validateBar(bar); err != nil {
			return nil, err
		}
		if haveBar && bar.Symbol == lastBar.Symbol && !bar.Time.After(lastBar.Time) {
			return nil, xerrors.DataError("non-monotonic bar timestamp for "+bar.Symbol, bar.Time)
		}

		lastClose[bar.Symbol] = bar.Close
		currentPrices := snapshotPrices(lastClose)

		totalValue := e.portfolio.TotalValue(currentPrices)
		if e.killswitches.CheckAll(totalValue, currentPrices, bar.Time) {
			e.logTrips(bar.Time)
			tripped = true
			break
		}

		e.executePendingOrders(bar)

		e.portfolio.RecordEquityPoint(bar.Time, currentPrices)
		if e.runm != nil {
			e.runm.Equity.Set(e.portfolio.TotalValue(currentPrices))
			e.runm.BarsProcessed.Inc()
		}

		var barResult strategy.BarProcessResult
		if bar.Symbol == e.cfg.Symbol {
			ectx.Advance(bar)
			barResult, err = e.strat.OnBar(bar, ectx)
			if err != nil {
				return nil, fmt.Errorf("strategy on_bar: %w", err)
			}
		}

		e.pipeline.OnBar(bar.Time, e.portfolio.TotalValue(currentPrices), bar)
		if barResult.Exit != nil {
			e.exitMeta[barResult.Exit.OrderID] = exitContext{
				EntryATR:              barResult.Exit.EntryATR,
				StopLossATRMultiplier: barResult.Exit.StopLossATRMultiplier,
			}
		}

		lastBar = bar
		haveBar = true
	}

	if !tripped && haveBar {
		if err := e.forceCloseOpenPosition(lastBar); err != nil {
			return nil, err
		}
	}

	if err := e.strat.OnFinish(ectx); err != nil {
		return nil, fmt.Errorf("strategy on_finish: %w", err)
	}

	results := &Results{
		Portfolio:    e.portfolio,
		EquityCurve:  e.portfolio.EquityCurve(),
		TradeLedger:  e.portfolio.Ledger(),
		Metrics:      metrics.Summary(e.pipeline.Snapshot()),
		KillSwitches: e.killSwitchReport(),
	}

	if e.cfg.Benchmark != nil {
		benchReturn, err := buyAndHoldReturn(e.cfg.Benchmark)
		if err != nil {
			e.log.Warn().Err(err).Msg("benchmark return computation failed")
		} else {
			results.HasBenchmark = true
			results.BenchmarkReturn = benchReturn
		}
	}

	return results, nil
}

// executePendingOrders fires every pending order whose creation timestamp
// is strictly before bar.Time and whose trigger condition is met against
// bar, pricing the fill through the execution engine. Orders for symbols
// other than bar.Symbol are left pending for their own bar.
func (e *Engine) executePendingOrders(bar bardata.Bar) {
	for _, o := range e.portfolio.PendingOrders() {
		if o.Symbol != bar.Symbol {
			continue
		}
		if !o.CreatedAt.Before(bar.Time) {
			// No same-bar look-ahead: an order created this bar is only
			// eligible starting the next bar.
			continue
		}
		fires, refPrice := portfolio.Triggerable(o, bar)
		if !fires {
			continue
		}
		fill := e.exec.Execute(execution.Order{
			Symbol: o.Symbol,
			Side:   execution.Side(o.Side),
			Qty:    o.Qty,
		}, refPrice, bar.Volume)

		ledgerLenBefore := len(e.portfolio.Ledger())
		if err := e.portfolio.ApplyFill(o, fill.FillPrice, fill.Commission, bar.Time); err != nil {
			e.log.Error().Err(err).Str("order_id", o.ID.String()).Msg("apply_fill invariant violation")
			continue
		}
		if e.runm != nil && o.Status == portfolio.StatusFilled {
			e.runm.OrdersFilled.WithLabelValues(string(o.Side)).Inc()
		}
		if o.Status == portfolio.StatusFilled {
			e.dispatchTradeIfClosed(o.ID, ledgerLenBefore)
		}
	}
}

// dispatchTradeIfClosed feeds the pipeline the ledger entry this order's
// fill just produced, if it closed a position: the portfolio's real
// realized P&L and commission, post slippage/spread/impact, rather than
// any strategy estimate. If the order carried exit risk context registered
// via ExitResult, the entry is enriched with R-multiple before dispatch.
func (e *Engine) dispatchTradeIfClosed(orderID uuid.UUID, ledgerLenBefore int) {
	ledger := e.portfolio.Ledger()
	if len(ledger) <= ledgerLenBefore {
		return
	}
	last := len(ledger) - 1
	if !ledger[last].Closing {
		// Opening leg: ledgered, but not a completed trade for the pipeline.
		return
	}
	if ctx, ok := e.exitMeta[orderID]; ok {
		ledger[last].EntryATR = ctx.EntryATR
		ledger[last].RMultiple = strategy.ComputeRMultiple(ledger[last].RealizedPnL, ledger[last].Qty, ctx.EntryATR, ctx.StopLossATRMultiplier)
		delete(e.exitMeta, orderID)
	}
	e.pipeline.OnTrade(ledger[last])
}

// forceCloseOpenPosition closes any still-open position at the final bar's
// close once the stream is exhausted, so the run's final equity reflects
// realized rather than paper P&L.
func (e *Engine) forceCloseOpenPosition(lastBar bardata.Bar) error {
	pos, ok := e.portfolio.Position(e.cfg.Symbol)
	if !ok || pos.Qty == 0 {
		return nil
	}

	var order *portfolio.Order
	if pos.Qty > 0 {
		order = e.portfolio.PlaceSell(e.cfg.Symbol, pos.Qty, lastBar.Time)
	} else {
		order = e.portfolio.PlaceBuy(e.cfg.Symbol, -pos.Qty, lastBar.Time)
	}

	fill := e.exec.Execute(execution.Order{
		Symbol: order.Symbol,
		Side:   execution.Side(order.Side),
		Qty:    order.Qty,
	}, lastBar.Close, lastBar.Volume)

	if err := e.portfolio.ApplyFill(order, fill.FillPrice, fill.Commission, lastBar.Time); err != nil {
		return fmt.Errorf("force-close fill: %w", err)
	}

	ledger := e.portfolio.Ledger()
	if len(ledger) > 0 && ledger[len(ledger)-1].Closing {
		e.pipeline.OnTrade(ledger[len(ledger)-1])
	}

	prices := map[string]float64{e.cfg.Symbol: lastBar.Close}
	// The final bar usually has an equity point already; overwrite it so
	// curve timestamps stay strictly increasing.
	if curve := e.portfolio.EquityCurve(); len(curve) > 0 && curve[len(curve)-1].Time.Equal(lastBar.Time) {
		curve[len(curve)-1].Equity = e.portfolio.TotalValue(prices)
	} else {
		e.portfolio.RecordEquityPoint(lastBar.Time, prices)
	}
	e.pipeline.OnBar(lastBar.Time, e.portfolio.TotalValue(prices), lastBar)
	return nil
}

func (e *Engine) logTrips(at time.Time) {
	for _, tr := range e.killswitches.Triggers() {
		if !tr.Activated() {
			continue
		}
		e.log.Warn().
			Str("trigger", tr.Name()).
			Time("activated_at", tr.ActivationTime()).
			Str("reason", tr.ActivationReason()).
			Msg("kill switch tripped")
		if e.runm != nil {
			e.runm.KillSwitchTrips.WithLabelValues(tr.Name()).Inc()
		}
	}
	_ = at
}

func (e *Engine) killSwitchReport() KillSwitchReport {
	var report KillSwitchReport
	for _, tr := range e.killswitches.Triggers() {
		if tr.Activated() {
			report.Activated = append(report.Activated, TriggerReport{
				Name:             tr.Name(),
				ActivationTime:   tr.ActivationTime(),
				ActivationReason: tr.ActivationReason(),
			})
		}
	}
	return report
}

func snapshotPrices(lastClose map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(lastClose))
	for k, v := range lastClose {
		out[k] = v
	}
	return out
}

// validateBar rejects NaN, non-monotonic OHLC ranges, and negative
// prices/volumes with a DataError rather than silently skipping the bar.
func validateBar(b bardata.Bar) error {
	vals := []float64{b.Open, b.High, b.Low, b.Close, b.Volume}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return xerrors.DataError("bar contains NaN/Inf field for "+b.Symbol, b.Time)
		}
	}
	if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 {
		return xerrors.DataError("bar contains negative field for "+b.Symbol, b.Time)
	}
	if b.High < b.Low {
		return xerrors.DataError("bar high < low for "+b.Symbol, b.Time)
	}
	return nil
}

// buyAndHoldReturn computes close[last]/close[first]-1 over a benchmark
// data source, consuming it fully (the source is Reset first so repeated
// runs over the same sweep point see the same benchmark).
func buyAndHoldReturn(data bardata.DataSource) (float64, error) {
	if err := data.Reset(); err != nil {
		return 0, err
	}
	var first, last float64
	seen := false
	for {
		bar, ok, err := data.Next()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		if !seen {
			first = bar.Close
			seen = true
		}
		last = bar.Close
	}
	if !seen || first == 0 {
		return 0, xerrors.DataError("benchmark data source is empty", time.Time{})
	}
	return last/first - 1, nil
}
