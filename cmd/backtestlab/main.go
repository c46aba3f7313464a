// Command backtestlab runs single backtests and parameter sweeps against
// the ATR breakout reference strategy (or any strategy.Factory wired in
// code), and optionally serves Prometheus metrics and a health endpoint
// while doing so.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
