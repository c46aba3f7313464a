package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/engine"
	"github.com/chidi150c/backtestlab/internal/execution"
	"github.com/chidi150c/backtestlab/internal/killswitch"
	"github.com/chidi150c/backtestlab/internal/obslog"
	"github.com/chidi150c/backtestlab/internal/obsmetrics"
	"github.com/chidi150c/backtestlab/internal/resultstore"
	"github.com/chidi150c/backtestlab/internal/strategy"
	"github.com/chidi150c/backtestlab/internal/strategy/atrbreakout"
	"github.com/chidi150c/backtestlab/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate the ATR breakout strategy across a parameter-space product",
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
			cfg.Sweep.Workers = v
		}
		if v, _ := cmd.Flags().GetInt("iterations"); v > 0 {
			cfg.Sweep.Iterations = v
		}
		if cfg.Run.DataFile == "" {
			return fmt.Errorf("run.data_file is required for a sweep")
		}

		bars, err := bardata.LoadCSV(cfg.Run.DataFile)
		if err != nil {
			return fmt.Errorf("load data file: %w", err)
		}

		ps, err := cfg.Sweep.ToParameterSpace()
		if err != nil {
			return fmt.Errorf("parameter space: %w", err)
		}

		var points []sweep.Point
		switch cfg.Sweep.Mode {
		case "", "cartesian":
			points, err = ps.CartesianProduct()
		case "random":
			rng := rand.New(rand.NewSource(cfg.Sweep.Seed))
			points, err = ps.RandomSample(cfg.Sweep.Iterations, rng)
		default:
			return fmt.Errorf("unknown sweep.mode %q", cfg.Sweep.Mode)
		}
		if err != nil {
			return fmt.Errorf("enumerate points: %w", err)
		}

		log := obslog.New("backtestlab-sweep", logOptions())
		sweepMetrics := obsmetrics.NewSweepMetrics()

		build := func(pt sweep.Point) (engine.Config, bardata.DataSource, *execution.Engine, *killswitch.Manager, error) {
			exec, err := cfg.Execution.ToExecutionEngine()
			if err != nil {
				return engine.Config{}, nil, nil, nil, err
			}
			ks := cfg.KillSwitch.ToManager(cfg.Run.InitialCash)
			return engine.Config{
				Symbol:              cfg.Run.Symbol,
				InitialCash:         cfg.Run.InitialCash,
				AllowShort:          cfg.Run.AllowShort,
				ATRPeriod:           cfg.Run.ATRPeriod,
				PriceBufferCapacity: cfg.Run.PriceBufferCapacity,
			}, bardata.NewSliceSource(bars), exec, ks, nil
		}

		strategyFactory := func() strategy.Strategy {
			return atrbreakout.NewWithParams(cfg.Strategy.ToStrategyParams(cfg.Run.Symbol))
		}

		results, err := sweep.Run(context.Background(), sweep.Config{
			Points:    points,
			Strategy:  strategyFactory,
			Build:     build,
			Objective: cfg.Sweep.ResolveObjective(),
			Workers:   cfg.Sweep.Workers,
			Log:       log,
			Metrics:   sweepMetrics,
		})
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}

		printSweepResults(results, ps.Names)

		if cfg.ResultStore.Enabled {
			if err := persistSweepResults(cfg.Sweep.Objective, results); err != nil {
				return fmt.Errorf("persist sweep results: %w", err)
			}
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().Int("workers", 0, "override sweep.workers (0 = use config)")
	sweepCmd.Flags().Int("iterations", 0, "override sweep.iterations for random-search mode (0 = use config)")
}

func printSweepResults(results []sweep.PointResult, paramNames []string) {
	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	fmt.Printf("points_evaluated=%d succeeded=%d failed=%d\n", len(results), succeeded, failed)

	if best := sweep.Best(results); best != nil {
		fmt.Printf("best objective=%.6f parameters=%v\n", best.Objective, best.Parameters)
	}
	if worst := sweep.Worst(results); worst != nil {
		fmt.Printf("worst objective=%.6f parameters=%v\n", worst.Objective, worst.Parameters)
	}

	top := sweep.TopN(results, 5)
	for i, r := range top {
		fmt.Printf("top[%d] objective=%.6f parameters=%v\n", i+1, r.Objective, r.Parameters)
	}

	for _, row := range sweep.Sensitivity(results, paramNames) {
		fmt.Printf("sensitivity parameter=%s value=%v mean=%.6f stddev=%.6f count=%d range=%.6f\n",
			row.Parameter, row.Value, row.Mean, row.StdDev, row.Count, row.Range)
	}

	corr := sweep.Correlation(results, paramNames)
	for i, rowLabel := range corr.Labels {
		for j, colLabel := range corr.Labels {
			if i >= j {
				continue
			}
			fmt.Printf("correlation %s_vs_%s=%.6f\n", rowLabel, colLabel, corr.Values[i][j])
		}
	}
}

func persistSweepResults(objective string, results []sweep.PointResult) error {
	store, err := resultstore.Open(cfg.ResultStore.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	run := resultstore.RunRecord{
		ID:         uuid.New(),
		StartedAt:  time.Now(),
		Objective:  objective,
		PointCount: len(results),
	}
	return store.InsertRun(run, results)
}
