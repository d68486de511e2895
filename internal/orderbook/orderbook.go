// Package orderbook holds resting orders and executes them against quote
// data. It has no notion of time advancing on its own — the tick engine
// calls ExecuteOrders once per tick with the clock's current timestamp.
package orderbook

import (
	"github.com/shopspring/decimal"

	"uistd/internal/quotestore"
	"uistd/pkg/types"
)

// Book is an insertion-ordered queue of resting orders with a monotonic ID
// counter. It has no mutex of its own — callers (the tick engine) hold
// whatever lock is appropriate for their scope.
type Book struct {
	orders []types.Order
	lastID types.OrderID
}

// New returns an empty book.
func New() *Book {
	return &Book{}
}

// InsertOrder stamps order with the next monotonic ID and appends it to the
// resting queue. IDs are assigned here, at insertion time, never earlier.
func (b *Book) InsertOrder(order types.Order) types.Order {
	b.lastID++
	order.OrderID = b.lastID
	b.orders = append(b.orders, order)
	return order
}

// DeleteOrder removes the resting order with the given ID. Deleting an
// unknown ID is a silent no-op.
func (b *Book) DeleteOrder(id types.OrderID) {
	for i, o := range b.orders {
		if o.OrderID == id {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return
		}
	}
}

// Orders returns the current resting orders in insertion order. The
// returned slice must not be mutated by the caller.
func (b *Book) Orders() []types.Order {
	return b.orders
}

// ExecuteOrders walks every resting order, triggers the ones whose rule is
// satisfied by the quote at date, and removes the triggered orders from the
// book. Orders whose symbol has no quote at date are left resting. Trades
// are returned in the order the triggering orders were walked.
func (b *Book) ExecuteOrders(date int64, store *quotestore.Store) []types.Trade {
	var trades []types.Trade
	var filled []types.OrderID

	for _, order := range b.orders {
		quote, ok := store.GetQuote(date, order.Symbol)
		if !ok {
			continue
		}
		trade, triggered := evaluate(order, quote, date)
		if !triggered {
			continue
		}
		trades = append(trades, trade)
		filled = append(filled, order.OrderID)
	}

	for _, id := range filled {
		b.DeleteOrder(id)
	}

	return trades
}

// evaluate applies the six-case trigger table to a single order against a
// single quote. It never looks beyond the quote passed in — the lookahead
// discipline is entirely the tick engine's responsibility (it only ever
// calls ExecuteOrders with the clock's post-tick timestamp).
func evaluate(order types.Order, quote types.Quote, date int64) (types.Trade, bool) {
	switch order.OrderType {
	case types.MarketBuy:
		return fill(order, quote.Ask, date, types.Buy), true
	case types.MarketSell:
		return fill(order, quote.Bid, date, types.Sell), true
	case types.LimitBuy:
		if order.Price != nil && order.Price.GreaterThanOrEqual(quote.Ask) {
			return fill(order, quote.Ask, date, types.Buy), true
		}
	case types.LimitSell:
		if order.Price != nil && order.Price.LessThanOrEqual(quote.Bid) {
			return fill(order, quote.Bid, date, types.Sell), true
		}
	case types.StopBuy:
		if order.Price != nil && order.Price.LessThanOrEqual(quote.Ask) {
			return fill(order, quote.Ask, date, types.Buy), true
		}
	case types.StopSell:
		if order.Price != nil && order.Price.GreaterThanOrEqual(quote.Bid) {
			return fill(order, quote.Bid, date, types.Sell), true
		}
	}
	return types.Trade{}, false
}

func fill(order types.Order, price decimal.Decimal, date int64, typ types.TradeType) types.Trade {
	return types.Trade{
		Symbol:   order.Symbol,
		Value:    price.Mul(order.Shares),
		Quantity: order.Shares,
		Date:     date,
		Typ:      typ,
	}
}
