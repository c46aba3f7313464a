package metrics

import (
	"math"
	"time"

	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
)

// TradeList appends completed trades and derives count/win-rate/profit-
// factor totals. A trade is "winning" or "losing" strictly by the sign of
// its realized P&L, never by raw buy/sell leg parity, which double-counts
// a single round trip as two unrelated legs.
type TradeList struct {
	trades     []portfolio.TradeLedgerEntry
	grossWins  float64
	grossLoss  float64
	winCount   int
	lossCount  int
}

func NewTradeList() *TradeList { return &TradeList{} }

func (tl *TradeList) Name() string { return "trade_list" }

func (tl *TradeList) Initialize(float64) {
	tl.trades = nil
	tl.grossWins = 0
	tl.grossLoss = 0
	tl.winCount = 0
	tl.lossCount = 0
}

func (tl *TradeList) OnBar(time.Time, float64, bardata.Bar) {}

func (tl *TradeList) OnTrade(trade portfolio.TradeLedgerEntry) {
	tl.trades = append(tl.trades, trade)
	switch {
	case trade.RealizedPnL > 0:
		tl.grossWins += trade.RealizedPnL
		tl.winCount++
	case trade.RealizedPnL < 0:
		tl.grossLoss += -trade.RealizedPnL
		tl.lossCount++
	}
}

func (tl *TradeList) Snapshot() map[string]float64 {
	total := len(tl.trades)
	winRate := 0.0
	if total > 0 {
		winRate = float64(tl.winCount) / float64(total)
	}
	profitFactor := math.Inf(1)
	if tl.grossLoss > 0 {
		profitFactor = tl.grossWins / tl.grossLoss
	}
	avgWin := 0.0
	if tl.winCount > 0 {
		avgWin = tl.grossWins / float64(tl.winCount)
	}
	avgLoss := 0.0
	if tl.lossCount > 0 {
		avgLoss = tl.grossLoss / float64(tl.lossCount)
	}
	return map[string]float64{
		"total_trades":   float64(total),
		"winning_trades": float64(tl.winCount),
		"losing_trades":  float64(tl.lossCount),
		"gross_wins":     tl.grossWins,
		"gross_losses":   tl.grossLoss,
		"win_rate":       winRate,
		"profit_factor":  profitFactor,
		"average_win":    avgWin,
		"average_loss":   avgLoss,
	}
}

func (tl *TradeList) Reset() {
	tl.trades = nil
	tl.grossWins = 0
	tl.grossLoss = 0
	tl.winCount = 0
	tl.lossCount = 0
}
