// FILE: trigger.go
// Order-trigger rules (C4): given a pending order and the bar it is being
// evaluated against, decide whether it fires this bar and at what
// reference price the execution engine should price the fill.
package portfolio

import "github.com/chidi150c/backtestlab/internal/bardata"

// Triggerable reports whether order fires against bar, and if so the
// reference price to hand to the execution engine. Market orders always
// trigger, referencing bar.Close (the engine is expected to call this with
// the bar immediately following order placement, per the next-bar
// market-fill convention). Limit/stop orders trigger only when the bar's
// range crosses their price, per the deterministic rules fixed here.
// OrderStopLimit orders mutate o.Armed: the first bar whose range crosses
// StopPrice arms the order, after which it is evaluated exactly like an
// OrderLimit on every bar (including the arming bar) until it fills.
func Triggerable(o *Order, bar bardata.Bar) (fires bool, referencePrice float64) {
	switch o.Type {
	case OrderMarket:
		return true, bar.Close

	case OrderLimit:
		if o.Side == SideBuy {
			if bar.Low <= o.LimitPrice {
				return true, o.LimitPrice
			}
			return false, 0
		}
		if bar.High >= o.LimitPrice {
			return true, o.LimitPrice
		}
		return false, 0

	case OrderStop:
		if o.Side == SideBuy {
			if bar.High >= o.StopPrice {
				price := o.StopPrice
				if bar.Open > price {
					price = bar.Open
				}
				return true, price
			}
			return false, 0
		}
		if bar.Low <= o.StopPrice {
			price := o.StopPrice
			if bar.Open < price {
				price = bar.Open
			}
			return true, price
		}
		return false, 0

	case OrderStopLimit:
		if !o.Armed {
			if o.Side == SideBuy {
				o.Armed = bar.High >= o.StopPrice
			} else {
				o.Armed = bar.Low <= o.StopPrice
			}
			if !o.Armed {
				return false, 0
			}
		}
		if o.Side == SideBuy {
			if bar.Low <= o.LimitPrice {
				return true, o.LimitPrice
			}
			return false, 0
		}
		if bar.High >= o.LimitPrice {
			return true, o.LimitPrice
		}
		return false, 0
	}
	return false, 0
}
