// FILE: paper.go
package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PaperBroker simulates fills against a single mutable last-seen price per
// symbol. It exists for wiring tests and CLI dry-runs; the backtest core
// never constructs one.
type PaperBroker struct {
	mu       sync.Mutex
	price    map[string]float64
	cash     float64
	currency string
	orders   map[string]OrderAck
	fills    map[string]Position
}

// NewPaperBroker builds a paper broker seeded with startingCash.
func NewPaperBroker(startingCash float64, currency string) *PaperBroker {
	return &PaperBroker{
		price:    make(map[string]float64),
		cash:     startingCash,
		currency: currency,
		orders:   make(map[string]OrderAck),
		fills:    make(map[string]Position),
	}
}

// SetPrice seeds or updates the last-known price a symbol fills at.
func (p *PaperBroker) SetPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.price[symbol] = price
}

func (p *PaperBroker) Connect(ctx context.Context) error    { return nil }
func (p *PaperBroker) Disconnect(ctx context.Context) error { return nil }

func (p *PaperBroker) GetAccountInfo(ctx context.Context) (AccountInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	equity := p.cash
	for sym, pos := range p.fills {
		equity += pos.Qty * p.price[sym]
	}
	return AccountInfo{Cash: p.cash, Equity: equity, Currency: p.currency, UpdatedAt: time.Now().UTC()}, nil
}

func (p *PaperBroker) GetPositions(ctx context.Context) ([]Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Position, 0, len(p.fills))
	for _, pos := range p.fills {
		if pos.Qty != 0 {
			out = append(out, pos)
		}
	}
	return out, nil
}

func (p *PaperBroker) PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error) {
	if req.Qty <= 0 {
		return OrderAck{}, errors.New("order quantity must be positive")
	}
	if req.Type != OrderTypeMarket {
		return OrderAck{}, errors.New("paper broker only fills market orders")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.price[req.Symbol]
	if !ok {
		return OrderAck{}, errors.New("no known price for " + req.Symbol)
	}

	signedQty := req.Qty
	if req.Side == SideSell {
		signedQty = -req.Qty
	}
	notional := req.Qty * price
	if req.Side == SideBuy && notional > p.cash {
		return OrderAck{}, errors.New("insufficient paper cash")
	}

	if req.Side == SideBuy {
		p.cash -= notional
	} else {
		p.cash += notional
	}

	pos := p.fills[req.Symbol]
	pos.Symbol = req.Symbol
	pos.Qty += signedQty
	p.fills[req.Symbol] = pos

	ack := OrderAck{
		OrderID:   uuid.New().String(),
		Status:    OrderStatusFilled,
		FilledQty: req.Qty,
		FillPrice: price,
		PlacedAt:  time.Now().UTC(),
	}
	p.orders[ack.OrderID] = ack
	return ack, nil
}

func (p *PaperBroker) CancelOrder(ctx context.Context, orderID string) error {
	return errors.New("paper broker fills immediately, nothing to cancel")
}

func (p *PaperBroker) GetOrderStatus(ctx context.Context, orderID string) (OrderStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ack, ok := p.orders[orderID]
	if !ok {
		return "", errors.New("unknown order id " + orderID)
	}
	return ack.Status, nil
}

func (p *PaperBroker) GetOrders(ctx context.Context) ([]OrderAck, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]OrderAck, 0, len(p.orders))
	for _, ack := range p.orders {
		out = append(out, ack)
	}
	return out, nil
}

func (p *PaperBroker) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.price[symbol]
	if !ok {
		return Quote{}, errors.New("no known price for " + symbol)
	}
	return Quote{Symbol: symbol, Bid: price, Ask: price, At: time.Now().UTC()}, nil
}

func (p *PaperBroker) GetHistoricalData(ctx context.Context, symbol string, from, to time.Time) ([]HistoricalBar, error) {
	return nil, errors.New("paper broker has no historical data; use a bardata.DataSource instead")
}
