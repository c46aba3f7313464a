// FILE: portfolio.go
package portfolio

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/chidi150c/backtestlab/internal/xerrors"
)

// Portfolio holds cash, positions by symbol, the full order history, the
// trade ledger, and the equity curve for one run. AllowShort governs
// whether a sell exceeding the current long position opens a short instead
// of being rejected.
type Portfolio struct {
	initialCash float64
	cash        float64
	positions   map[string]*Position
	orders      []*Order
	ledger      []TradeLedgerEntry
	equity      []EquityPoint

	AllowShort bool
}

// New creates a Portfolio seeded with initialCash.
func New(initialCash float64) *Portfolio {
	return &Portfolio{
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[string]*Position),
	}
}

// InitialCash returns the immutable starting cash.
func (p *Portfolio) InitialCash() float64 { return p.initialCash }

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Position returns the current position for symbol, or ok=false if none.
func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Orders returns every order ever placed, in creation order.
func (p *Portfolio) Orders() []*Order { return p.orders }

// Ledger returns the trade ledger in append order.
func (p *Portfolio) Ledger() []TradeLedgerEntry { return p.ledger }

// EquityCurve returns the recorded equity points in append order.
func (p *Portfolio) EquityCurve() []EquityPoint { return p.equity }

func (p *Portfolio) newOrder(symbol string, side Side, typ OrderType, qty, limit, stop float64, at time.Time) *Order {
	o := &Order{
		ID:         uuid.New(),
		Symbol:     symbol,
		Side:       side,
		Type:       typ,
		Qty:        qty,
		LimitPrice: limit,
		StopPrice:  stop,
		Status:     StatusPending,
		CreatedAt:  at,
	}
	p.orders = append(p.orders, o)
	return o
}

// PlaceBuy appends a pending market buy order.
func (p *Portfolio) PlaceBuy(symbol string, qty float64, at time.Time) *Order {
	return p.newOrder(symbol, SideBuy, OrderMarket, qty, 0, 0, at)
}

// PlaceSell appends a pending market sell order.
func (p *Portfolio) PlaceSell(symbol string, qty float64, at time.Time) *Order {
	return p.newOrder(symbol, SideSell, OrderMarket, qty, 0, 0, at)
}

// PlaceBuyLimit appends a pending buy-limit order.
func (p *Portfolio) PlaceBuyLimit(symbol string, qty, limitPrice float64, at time.Time) *Order {
	return p.newOrder(symbol, SideBuy, OrderLimit, qty, limitPrice, 0, at)
}

// PlaceSellLimit appends a pending sell-limit order.
func (p *Portfolio) PlaceSellLimit(symbol string, qty, limitPrice float64, at time.Time) *Order {
	return p.newOrder(symbol, SideSell, OrderLimit, qty, limitPrice, 0, at)
}

// PlaceBuyStop appends a pending buy-stop order.
func (p *Portfolio) PlaceBuyStop(symbol string, qty, stopPrice float64, at time.Time) *Order {
	return p.newOrder(symbol, SideBuy, OrderStop, qty, 0, stopPrice, at)
}

// PlaceSellStop appends a pending sell-stop order.
func (p *Portfolio) PlaceSellStop(symbol string, qty, stopPrice float64, at time.Time) *Order {
	return p.newOrder(symbol, SideSell, OrderStop, qty, 0, stopPrice, at)
}

// PlaceBuyStopLimit appends a pending buy stop-limit order: it arms once the
// bar range crosses stopPrice, then behaves as a resting buy-limit at
// limitPrice.
func (p *Portfolio) PlaceBuyStopLimit(symbol string, qty, stopPrice, limitPrice float64, at time.Time) *Order {
	return p.newOrder(symbol, SideBuy, OrderStopLimit, qty, limitPrice, stopPrice, at)
}

// PlaceSellStopLimit appends a pending sell stop-limit order: it arms once
// the bar range crosses stopPrice, then behaves as a resting sell-limit at
// limitPrice.
func (p *Portfolio) PlaceSellStopLimit(symbol string, qty, stopPrice, limitPrice float64, at time.Time) *Order {
	return p.newOrder(symbol, SideSell, OrderStopLimit, qty, limitPrice, stopPrice, at)
}

// PendingOrders returns all orders currently in PENDING status, in creation
// order.
func (p *Portfolio) PendingOrders() []*Order {
	var out []*Order
	for _, o := range p.orders {
		if o.Status == StatusPending {
			out = append(out, o)
		}
	}
	return out
}

// CancelOrder transitions a pending order to Canceled. No-op if the order
// is not pending.
func (p *Portfolio) CancelOrder(o *Order) {
	if o.Status == StatusPending {
		o.Status = StatusCanceled
	}
}

// ApplyFill transitions a pending order to Filled (or Rejected, if the
// rejection policy applies) given an execution price and commission, and
// mutates cash/position/ledger accordingly. Returns an InvariantError if
// the order is not pending or cash would go negative on a non-rejected
// path (the latter should be unreachable given the rejection check below).
func (p *Portfolio) ApplyFill(o *Order, fillPrice, commission float64, at time.Time) error {
	if o.Status != StatusPending {
		return xerrors.InvariantError("apply_fill on non-pending order "+o.Symbol, at)
	}

	delta := o.Qty
	if o.Side == SideSell {
		delta = -o.Qty
	}

	pos := p.positions[o.Symbol]
	existingQty := 0.0
	if pos != nil {
		existingQty = pos.Qty
	}

	// Rejection policy: insufficient cash on a fill that increases net
	// long exposure; shorting beyond the rejection policy when disallowed.
	if o.Side == SideBuy {
		notional := o.Qty*fillPrice + commission
		if notional > p.cash+1e-9 {
			o.Status = StatusRejected
			o.RejectedWhy = "insufficient cash"
			return nil
		}
	} else {
		closingExisting := existingQty > 0
		exceedsPosition := o.Qty > existingQty+1e-12
		if !closingExisting && !p.AllowShort {
			o.Status = StatusRejected
			o.RejectedWhy = "short selling not permitted"
			return nil
		}
		if closingExisting && exceedsPosition && !p.AllowShort {
			o.Status = StatusRejected
			o.RejectedWhy = "sell exceeds position and shorting not permitted"
			return nil
		}
	}

	newQty := existingQty + delta
	p.cash -= delta * fillPrice
	p.cash -= commission

	entry := TradeLedgerEntry{
		At:         at,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Qty:        o.Qty,
		Price:      fillPrice,
		Notional:   o.Qty * fillPrice,
		Commission: commission,
	}

	switch {
	case existingQty == 0:
		p.positions[o.Symbol] = &Position{Symbol: o.Symbol, Qty: newQty, AvgCost: fillPrice}

	case sameSign(existingQty, delta):
		// Scale-in: weighted-average cost.
		avg := pos.AvgCost
		newAvg := (math.Abs(existingQty)*avg + math.Abs(delta)*fillPrice) / math.Abs(newQty)
		pos.Qty = newQty
		pos.AvgCost = newAvg

	default:
		// Closing, partially closing, or reversing.
		closedQty := math.Min(math.Abs(existingQty), math.Abs(delta))
		realized := closedQty * (fillPrice - pos.AvgCost)
		if existingQty < 0 {
			realized = closedQty * (pos.AvgCost - fillPrice)
		}
		entry.Closing = true
		entry.EntryPrice = pos.AvgCost
		entry.RealizedPnL = realized

		switch {
		case newQty == 0:
			delete(p.positions, o.Symbol)
		case sameSign(newQty, existingQty):
			// Partial close: qty shrinks toward zero, avg unchanged.
			pos.Qty = newQty
		default:
			// Reversal: crossed through zero, new position at fill price.
			pos.Qty = newQty
			pos.AvgCost = fillPrice
		}
	}

	p.ledger = append(p.ledger, entry)

	o.Status = StatusFilled
	o.FilledAt = at
	o.FillPrice = fillPrice
	o.Commission = commission
	return nil
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// TotalValue returns cash + sum of qty_i * price_i over known prices.
// Positions with no entry in prices are excluded from the mark; callers
// should log such staleness.
func (p *Portfolio) TotalValue(prices map[string]float64) float64 {
	total := p.cash
	for sym, pos := range p.positions {
		if px, ok := prices[sym]; ok {
			total += pos.Qty * px
		}
	}
	return total
}

// RecordEquityPoint appends (timestamp, total_value) to the equity curve.
func (p *Portfolio) RecordEquityPoint(at time.Time, prices map[string]float64) {
	p.equity = append(p.equity, EquityPoint{Time: at, Equity: p.TotalValue(prices)})
}
