package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/engine"
	"github.com/chidi150c/backtestlab/internal/metrics"
	"github.com/chidi150c/backtestlab/internal/obslog"
	"github.com/chidi150c/backtestlab/internal/obsmetrics"
	"github.com/chidi150c/backtestlab/internal/strategy/atrbreakout"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest over one CSV bar file with the ATR breakout strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetString("symbol"); v != "" {
			cfg.Run.Symbol = v
		}
		if v, _ := cmd.Flags().GetString("data"); v != "" {
			cfg.Run.DataFile = v
		}
		withMetrics, _ := cmd.Flags().GetBool("metrics")

		log := obslog.New("backtestlab-run", logOptions())

		if cfg.Run.DataFile == "" {
			return fmt.Errorf("run.data_file is required (set via config file or --data)")
		}

		bars, err := bardata.LoadCSV(cfg.Run.DataFile)
		if err != nil {
			return fmt.Errorf("load data file: %w", err)
		}
		data := bardata.NewSliceSource(bars)

		var bench bardata.DataSource
		if cfg.Run.BenchmarkFile != "" {
			benchBars, err := bardata.LoadCSV(cfg.Run.BenchmarkFile)
			if err != nil {
				return fmt.Errorf("load benchmark file: %w", err)
			}
			bench = bardata.NewSliceSource(benchBars)
		}

		exec, err := cfg.Execution.ToExecutionEngine()
		if err != nil {
			return fmt.Errorf("build execution engine: %w", err)
		}

		strat := atrbreakout.NewWithParams(cfg.Strategy.ToStrategyParams(cfg.Run.Symbol))
		ks := cfg.KillSwitch.ToManager(cfg.Run.InitialCash)
		pipeline := metrics.NewDefaultPipeline()

		var runm *obsmetrics.RunMetrics
		if withMetrics {
			runm = obsmetrics.NewRunMetrics()
		}

		eng, err := engine.New(engine.Config{
			Symbol:              cfg.Run.Symbol,
			InitialCash:         cfg.Run.InitialCash,
			AllowShort:          cfg.Run.AllowShort,
			ATRPeriod:           cfg.Run.ATRPeriod,
			PriceBufferCapacity: cfg.Run.PriceBufferCapacity,
			Benchmark:           bench,
		}, data, exec, strat, ks, pipeline, log, runm)
		if err != nil {
			return fmt.Errorf("build engine: %w", err)
		}

		results, err := eng.Run(context.Background())
		if err != nil {
			return fmt.Errorf("run backtest: %w", err)
		}

		printResults(results)
		return nil
	},
}

func init() {
	runCmd.Flags().String("symbol", "", "override run.symbol")
	runCmd.Flags().String("data", "", "override run.data_file")
	runCmd.Flags().Bool("metrics", false, "instrument this run with a Prometheus registry (not served; use 'serve' to expose it)")
}

func printResults(r *engine.Results) {
	fmt.Printf("initial_cash=%.2f\n", r.Portfolio.InitialCash())
	if len(r.EquityCurve) > 0 {
		last := r.EquityCurve[len(r.EquityCurve)-1]
		fmt.Printf("final_equity=%.2f\n", last.Equity)
	}
	fmt.Printf("total_return=%.6f\n", r.Metrics.TotalReturn())
	fmt.Printf("max_drawdown=%.6f\n", r.Metrics.MaxDrawdown())
	fmt.Printf("sharpe=%.6f\n", r.Metrics.Sharpe())
	fmt.Printf("sortino=%.6f\n", r.Metrics.Sortino())
	fmt.Printf("calmar=%.6f\n", r.Metrics.Calmar())
	fmt.Printf("total_trades=%.0f\n", r.Metrics.TotalTrades())
	fmt.Printf("winning_trades=%.0f\n", r.Metrics.WinningTrades())
	fmt.Printf("profit_factor=%.6f\n", r.Metrics.ProfitFactor())
	if r.HasBenchmark {
		fmt.Printf("benchmark_return=%.6f\n", r.BenchmarkReturn)
	}
	if r.KillSwitches.Tripped() {
		for _, t := range r.KillSwitches.Activated {
			fmt.Printf("killswitch_activated name=%s at=%s reason=%q\n",
				t.Name, t.ActivationTime.Format("2006-01-02T15:04:05Z07:00"), t.ActivationReason)
		}
	}
}
