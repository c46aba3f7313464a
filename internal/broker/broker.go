// FILE: broker.go
// Package broker defines the live-trading broker contract:
// connect/disconnect lifecycle, account and position queries, order
// placement/cancellation/status, quotes, and historical data. The backtest
// core never imports this package (it talks to internal/execution and
// internal/portfolio directly), but a real adapter would implement Broker
// to drive the same Strategy against a live venue.
package broker

import (
	"context"
	"time"
)

// OrderSide mirrors portfolio.Side without importing it, keeping this
// package free of a core dependency a live adapter shouldn't need.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType is the venue order type requested.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

// OrderStatus is the venue-reported lifecycle state of a placed order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusRejected OrderStatus = "rejected"
)

// AccountInfo is a venue account snapshot.
type AccountInfo struct {
	Cash      float64
	Equity    float64
	Currency  string
	UpdatedAt time.Time
}

// Position is one open venue position.
type Position struct {
	Symbol   string
	Qty      float64
	AvgPrice float64
}

// OrderRequest describes an order to place.
type OrderRequest struct {
	Symbol     string
	Side       OrderSide
	Type       OrderType
	Qty        float64
	LimitPrice float64 // used when Type == OrderTypeLimit
	StopPrice  float64 // used when Type == OrderTypeStop
}

// OrderAck is the venue's immediate response to a placed order.
type OrderAck struct {
	OrderID   string
	Status    OrderStatus
	FilledQty float64
	FillPrice float64
	PlacedAt  time.Time
}

// Quote is a best-bid/ask snapshot.
type Quote struct {
	Symbol string
	Bid    float64
	Ask    float64
	At     time.Time
}

// HistoricalBar is one OHLCV observation returned by GetHistoricalData.
type HistoricalBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Broker is the full live-trading contract. Every operation is failable;
// there is no silent-partial-success path.
type Broker interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	GetAccountInfo(ctx context.Context) (AccountInfo, error)
	GetPositions(ctx context.Context) ([]Position, error)

	PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetOrderStatus(ctx context.Context, orderID string) (OrderStatus, error)
	GetOrders(ctx context.Context) ([]OrderAck, error)

	GetQuote(ctx context.Context, symbol string) (Quote, error)
	GetHistoricalData(ctx context.Context, symbol string, from, to time.Time) ([]HistoricalBar, error)
}
