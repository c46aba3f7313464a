package metrics

// Summary is a convenience read-only view over a Pipeline.Snapshot() map,
// for callers that want typed accessors instead of raw string keys.
type Summary map[string]float64

func (s Summary) Get(key string) float64 { return s[key] }

func (s Summary) TotalReturn() float64  { return s["total_return"] }
func (s Summary) MaxDrawdown() float64  { return s["max_drawdown"] }
func (s Summary) TotalTrades() float64  { return s["total_trades"] }
func (s Summary) WinningTrades() float64 { return s["winning_trades"] }
func (s Summary) ProfitFactor() float64 { return s["profit_factor"] }
func (s Summary) Sharpe() float64       { return s["sharpe"] }
func (s Summary) Sortino() float64      { return s["sortino"] }
func (s Summary) Calmar() float64       { return s["calmar"] }
