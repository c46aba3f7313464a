// FILE: types.go
// Package portfolio owns cash, positions, the order lifecycle, the trade
// ledger, and the equity curve. It is the single source of truth for
// account state during a run; the strategy and engine mutate it only
// through place_buy/place_sell/apply_fill.
package portfolio

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction of an order or position.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType distinguishes the trigger rule used to fill a pending order.
type OrderType string

const (
	OrderMarket    OrderType = "MARKET"
	OrderLimit     OrderType = "LIMIT"
	OrderStop      OrderType = "STOP"
	OrderStopLimit OrderType = "STOP_LIMIT"
)

// OrderStatus is the order's lifecycle state.
type OrderStatus string

const (
	StatusPending  OrderStatus = "PENDING"
	StatusFilled   OrderStatus = "FILLED"
	StatusCanceled OrderStatus = "CANCELED"
	StatusRejected OrderStatus = "REJECTED"
)

// Order is one request to change a position, tracked through its full
// lifecycle. Partially-Filled is reserved and never emitted by the core.
type Order struct {
	ID          uuid.UUID
	Symbol      string
	Side        Side
	Type        OrderType
	Qty         float64
	LimitPrice  float64 // meaningful for OrderLimit, OrderStopLimit
	StopPrice   float64 // meaningful for OrderStop, OrderStopLimit
	Armed       bool    // OrderStopLimit only: stop price has been crossed, now resting as a limit
	Status      OrderStatus
	CreatedAt   time.Time
	FilledAt    time.Time
	FillPrice   float64
	Commission  float64
	RejectedWhy string
}

// Position is the current holding in a symbol. Qty > 0 is long, Qty < 0 is
// short, Qty == 0 means no position (and the map entry should be removed).
type Position struct {
	Symbol  string
	Qty     float64
	AvgCost float64
}

// UnrealizedPnL marks the position to markPrice against its average cost
// basis. Returns 0 for a flat position.
func (p Position) UnrealizedPnL(markPrice float64) float64 {
	if p.Qty == 0 {
		return 0
	}
	return p.Qty * (markPrice - p.AvgCost)
}

// TradeLedgerEntry records one fill in the append-only trade ledger. Every
// fill produces exactly one entry; RealizedPnL is nonzero only for the
// portion of the fill that closed (fully, partially, or by reversal) an
// existing position, and Closing marks such entries.
type TradeLedgerEntry struct {
	At          time.Time
	Symbol      string
	Side        Side
	Qty         float64
	Price       float64
	Notional    float64 // Qty * Price
	RealizedPnL float64
	Commission  float64
	Closing     bool
	EntryPrice  float64 // avg cost the closing portion was matched against; 0 on opens
	EntryATR    float64 // set by the engine for R-multiple use; 0 if unused
	RMultiple   float64
}

// EquityPoint is one (timestamp, total account value) sample.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}
