// Package tickengine drives one backtest session's clock and order book
// forward one step at a time. It is the component that enforces the
// no-lookahead invariant: an order buffered while the clock sits at T can
// never execute against the quote at T, only at T+1 or later, because the
// clock always advances before the buffer is drained into the book.
package tickengine

import (
	"sort"

	"uistd/internal/clock"
	"uistd/internal/orderbook"
	"uistd/internal/quotestore"
	"uistd/pkg/types"
)

// Engine owns one session's mutable state: its clock, its order book, the
// buffer of orders awaiting the next tick, and the append-only trade log.
// The quote store is shared read-only across every session built from the
// same dataset.
type Engine struct {
	clock  *clock.Clock
	quotes *quotestore.Store
	book   *orderbook.Book
	buffer []types.Order
	trades []types.Trade
}

// New constructs an engine over a pre-built clock and quote store. The
// engine becomes the clock's sole mutator; the quote store is only read and
// may be shared with other engines.
func New(c *clock.Clock, quotes *quotestore.Store) *Engine {
	return &Engine{
		clock:  c,
		quotes: quotes,
		book:   orderbook.New(),
	}
}

// Now returns the engine's current logical timestamp.
func (e *Engine) Now() int64 {
	return e.clock.Now()
}

// Frequency returns the clock's frequency tag.
func (e *Engine) Frequency() types.Frequency {
	return e.clock.Frequency()
}

// InsertOrder appends order to the buffer. It does not reach the book, and
// has no OrderID, until the next Tick.
func (e *Engine) InsertOrder(order types.Order) {
	e.buffer = append(e.buffer, order)
}

// DeleteOrder forwards to the book. Only orders already stamped by a prior
// tick can be deleted this way.
func (e *Engine) DeleteOrder(id types.OrderID) {
	e.book.DeleteOrder(id)
}

// FetchQuotes returns every quote at the engine's current timestamp.
func (e *Engine) FetchQuotes() []types.Quote {
	quotes, ok := e.quotes.GetQuotes(e.Now())
	if !ok {
		return nil
	}
	return quotes
}

// TickResult is the outcome of one Tick call.
type TickResult struct {
	HasNext        bool
	ExecutedTrades []types.Trade
	InsertedOrders []types.Order
}

// Tick advances the clock, drains the order buffer into the book (sells
// before buys), executes against the quote store at the new timestamp, and
// appends the resulting trades to the log. The sequence is fixed: the
// clock always moves first, so nothing buffered this tick can execute
// against the quote that was current when it was inserted.
func (e *Engine) Tick() TickResult {
	if !e.clock.Tick() {
		// Exhausted schedule: nothing moves. The buffer stays buffered and
		// the book stays untouched, so repeated ticks past the end are
		// idempotent.
		return TickResult{}
	}

	sorted := sortBuffer(e.buffer)
	inserted := make([]types.Order, 0, len(sorted))
	for _, o := range sorted {
		inserted = append(inserted, e.book.InsertOrder(o))
	}
	e.buffer = nil

	now := e.clock.Now()
	executed := e.book.ExecuteOrders(now, e.quotes)
	e.trades = append(e.trades, executed...)

	return TickResult{
		HasNext:        e.clock.HasNext(),
		ExecutedTrades: executed,
		InsertedOrders: inserted,
	}
}

// TradeLog returns every trade executed by this engine across its whole
// lifetime. The log is append-only and never compacted within a session.
func (e *Engine) TradeLog() []types.Trade {
	return e.trades
}

// sortBuffer returns a stable-sorted copy of buffer with every sell-side
// order preceding every buy-side order. Orders within the same side keep
// their relative arrival order.
func sortBuffer(buffer []types.Order) []types.Order {
	sorted := make([]types.Order, len(buffer))
	copy(sorted, buffer)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderType.IsSell() && !sorted[j].OrderType.IsSell()
	})
	return sorted
}
