package atrbreakout

import (
	"testing"
	"time"

	"github.com/chidi150c/backtestlab/internal/atr"
	"github.com/chidi150c/backtestlab/internal/bardata"
	"github.com/chidi150c/backtestlab/internal/portfolio"
	"github.com/chidi150c/backtestlab/internal/strategy"
)

func newTestContext(t *testing.T, atrPeriod int) *strategy.EngineContext {
	t.Helper()
	p := portfolio.New(1_000_000)
	a := atr.NewATRState(atrPeriod)
	pb := atr.NewPriceBuffer(500)
	return strategy.NewEngineContext(p, a, pb, p)
}

func testBar(open, high, low, close float64) bardata.Bar {
	return bardata.Bar{
		Time: time.Now(), Symbol: "BTC-USD",
		Open: open, High: high, Low: low, Close: close, Volume: 1000,
	}
}
