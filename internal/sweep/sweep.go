// FILE: sweep.go
package sweep

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/engine"
	"github.com/chidi150c/backtestlab/internal/execution"
	"github.com/chidi150c/backtestlab/internal/killswitch"
	"github.com/chidi150c/backtestlab/internal/metrics"
	"github.com/chidi150c/backtestlab/internal/obsmetrics"
	"github.com/chidi150c/backtestlab/internal/strategy"
	"github.com/chidi150c/backtestlab/internal/xerrors"
)

// Objective extracts a scalar score from a run's metrics summary. DefaultObjective
// (Sharpe ratio) is used when Config.Objective is nil.
type Objective func(metrics.Summary) float64

// DefaultObjective ranks points by Sharpe ratio.
func DefaultObjective(s metrics.Summary) float64 { return s.Sharpe() }

// PointResult is one parameter point's outcome. Failures do not abort the
// sweep: they set Success=false, Objective=-Inf, and populate Err.
type PointResult struct {
	TaskID     uuid.UUID
	Parameters Point
	Metrics    metrics.Summary
	Objective  float64
	Success    bool
	Err        error
}

// EngineBuilder constructs one fresh engine.Config, data source, execution
// engine, and kill-switch manager for a single parameter point: everything
// a sweep worker needs to run an independent backtest. It must not share
// mutable state across calls; the sweep driver calls it once per point,
// potentially from different goroutines concurrently.
type EngineBuilder func(pt Point) (engine.Config, bardata.DataSource, *execution.Engine, *killswitch.Manager, error)

// Config configures a sweep run.
type Config struct {
	Points     []Point
	Strategy   strategy.Factory // fresh Strategy instance per point
	Build      EngineBuilder
	Objective  Objective
	Workers    int // worker pool size; <=0 defaults to 1
	Log        zerolog.Logger
	Metrics    *obsmetrics.SweepMetrics // optional; nil disables instrumentation
}

// Run evaluates every point in cfg.Points across a bounded worker pool,
// collecting results in completion order (not point order). A single
// point's failure is captured in its PointResult and never aborts the
// sweep; Run itself only returns an error for a configuration mistake.
func Run(ctx context.Context, cfg Config) ([]PointResult, error) {
	if len(cfg.Points) == 0 {
		return nil, xerrors.ConfigError("sweep has no points to evaluate")
	}
	if cfg.Strategy == nil {
		return nil, xerrors.ConfigError("sweep requires a strategy factory")
	}
	if cfg.Build == nil {
		return nil, xerrors.ConfigError("sweep requires an engine builder")
	}
	objective := cfg.Objective
	if objective == nil {
		objective = DefaultObjective
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]PointResult, len(cfg.Points))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, pt := range cfg.Points {
		i, pt := i, pt
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if cfg.Metrics != nil {
				cfg.Metrics.ActiveWorkers.Inc()
				defer cfg.Metrics.ActiveWorkers.Dec()
			}

			res := evaluatePoint(gctx, pt, cfg, objective)

			mu.Lock()
			results[i] = res
			mu.Unlock()

			if cfg.Metrics != nil {
				if res.Success {
					cfg.Metrics.PointsCompleted.Inc()
				} else {
					cfg.Metrics.PointsFailed.Inc()
				}
			}
			return nil // a point's own failure never aborts the group
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluatePoint runs a single backtest for pt, converting any failure into
// a PointResult rather than propagating it.
func evaluatePoint(ctx context.Context, pt Point, cfg Config, objective Objective) PointResult {
	taskID := uuid.New()

	strat := cfg.Strategy()
	if err := strat.SetParams(pt); err != nil {
		return failedPoint(taskID, pt, fmt.Errorf("set_params: %w", err))
	}

	engCfg, data, exec, ks, err := cfg.Build(pt)
	if err != nil {
		return failedPoint(taskID, pt, fmt.Errorf("build: %w", err))
	}

	workerLog := cfg.Log
	pipeline := metrics.NewDefaultPipeline()

	eng, err := engine.New(engCfg, data, exec, strat, ks, pipeline, workerLog, nil)
	if err != nil {
		return failedPoint(taskID, pt, fmt.Errorf("engine.New: %w", err))
	}

	res, err := eng.Run(ctx)
	if err != nil {
		return failedPoint(taskID, pt, xerrors.SweepTaskError(err))
	}

	return PointResult{
		TaskID:     taskID,
		Parameters: pt,
		Metrics:    res.Metrics,
		Objective:  objective(res.Metrics),
		Success:    true,
	}
}

func failedPoint(id uuid.UUID, pt Point, err error) PointResult {
	return PointResult{
		TaskID:     id,
		Parameters: pt,
		Objective:  math.Inf(-1),
		Success:    false,
		Err:        err,
	}
}
