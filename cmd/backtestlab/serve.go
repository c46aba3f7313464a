package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/chidi150c/backtestlab/internal/botenv"
	"github.com/chidi150c/backtestlab/internal/obslog"
	"github.com/chidi150c/backtestlab/internal/obsmetrics"
)

// serveCmd exposes /healthz and /metrics until interrupted. It starts no
// backtest or sweep: /metrics serves a fresh *prometheus.Registry of its own
// (internal/obsmetrics) that no run reports into, so nothing ever registers
// against Prometheus's package-level default registry.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /healthz and /metrics until interrupted; starts no run or sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := obslog.New("backtestlab-serve", logOptions())

		port := botenv.GetInt("PORT", 9090)
		if v, _ := cmd.Flags().GetInt("port"); v != 0 {
			port = v
		}

		runm := obsmetrics.NewRunMetrics()

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok\n"))
		})
		mux.Handle("/metrics", promhttp.HandlerFor(runm.Registry, promhttp.HandlerOpts{}))

		srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			log.Info().Int("port", port).Msg("serving /healthz and /metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			return fmt.Errorf("serve: %w", err)
		}

		shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
		defer c()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default: $PORT env var, else 9090)")
}
