// Package types defines shared data structures used across all packages.
//
// This package is the common vocabulary for the engine — quotes, orders,
// trades, and the sentinel errors shared by every layer. It has no dependencies on
// internal packages, so it can be imported by any layer.
package types

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Frequency identifies how a Clock's schedule advances.
type Frequency int

const (
	Second Frequency = iota
	Daily
	Fixed
	Minute
)

func (f Frequency) String() string {
	switch f {
	case Second:
		return "Second"
	case Daily:
		return "Daily"
	case Fixed:
		return "Fixed"
	case Minute:
		return "Minute"
	default:
		return "Unknown"
	}
}

// TradeType is the side a Trade was executed on.
type TradeType string

const (
	Buy  TradeType = "Buy"
	Sell TradeType = "Sell"
)

// OrderType enumerates the six order lifecycles the book understands.
type OrderType string

const (
	MarketBuy  OrderType = "MarketBuy"
	MarketSell OrderType = "MarketSell"
	LimitBuy   OrderType = "LimitBuy"
	LimitSell  OrderType = "LimitSell"
	StopBuy    OrderType = "StopBuy"
	StopSell   OrderType = "StopSell"
)

// IsSell reports whether this order type executes on the sell side. Used by
// the tick engine to sort the order buffer sells-first.
func (t OrderType) IsSell() bool {
	switch t {
	case MarketSell, LimitSell, StopSell:
		return true
	default:
		return false
	}
}

// ————————————————————————————————————————————————————————————————————————
// Quote
// ————————————————————————————————————————————————————————————————————————

// Quote is a single bid/ask pair for a symbol at a point in time.
type Quote struct {
	Symbol string          `json:"symbol"`
	Bid    decimal.Decimal `json:"bid"`
	Ask    decimal.Decimal `json:"ask"`
	Date   int64           `json:"date"`
}

// ————————————————————————————————————————————————————————————————————————
// Order
// ————————————————————————————————————————————————————————————————————————

// OrderID uniquely identifies a resting order within one session's book.
// Zero is not a valid assigned ID; it only appears on orders that have not
// yet been inserted into the book.
type OrderID uint64

// Order is a single buy/sell instruction. Price is absent for market orders
// and required for every other type.
type Order struct {
	OrderID   OrderID          `json:"order_id"`
	OrderType OrderType        `json:"order_type"`
	Symbol    string           `json:"symbol"`
	Shares    decimal.Decimal  `json:"shares"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// NewMarketBuy constructs a market buy order.
func NewMarketBuy(symbol string, shares decimal.Decimal) Order {
	return Order{OrderType: MarketBuy, Symbol: symbol, Shares: shares}
}

// NewMarketSell constructs a market sell order.
func NewMarketSell(symbol string, shares decimal.Decimal) Order {
	return Order{OrderType: MarketSell, Symbol: symbol, Shares: shares}
}

// NewLimitBuy constructs a limit buy order.
func NewLimitBuy(symbol string, shares, price decimal.Decimal) Order {
	return Order{OrderType: LimitBuy, Symbol: symbol, Shares: shares, Price: &price}
}

// NewLimitSell constructs a limit sell order.
func NewLimitSell(symbol string, shares, price decimal.Decimal) Order {
	return Order{OrderType: LimitSell, Symbol: symbol, Shares: shares, Price: &price}
}

// NewStopBuy constructs a stop buy order.
func NewStopBuy(symbol string, shares, price decimal.Decimal) Order {
	return Order{OrderType: StopBuy, Symbol: symbol, Shares: shares, Price: &price}
}

// NewStopSell constructs a stop sell order.
func NewStopSell(symbol string, shares, price decimal.Decimal) Order {
	return Order{OrderType: StopSell, Symbol: symbol, Shares: shares, Price: &price}
}

// RequiresPrice reports whether this order type must carry a Price.
func (o Order) RequiresPrice() bool {
	return o.OrderType != MarketBuy && o.OrderType != MarketSell
}

// Equal compares two orders ignoring OrderID, so a freshly buffered order
// (not yet stamped) compares equal to its stamped counterpart.
func (o Order) Equal(other Order) bool {
	if o.OrderType != other.OrderType || o.Symbol != other.Symbol {
		return false
	}
	if !o.Shares.Equal(other.Shares) {
		return false
	}
	if (o.Price == nil) != (other.Price == nil) {
		return false
	}
	if o.Price != nil && !o.Price.Equal(*other.Price) {
		return false
	}
	return true
}

// ————————————————————————————————————————————————————————————————————————
// Trade
// ————————————————————————————————————————————————————————————————————————

// Trade records a single execution produced by the order book.
type Trade struct {
	Symbol   string          `json:"symbol"`
	Value    decimal.Decimal `json:"value"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     int64           `json:"date"`
	Typ      TradeType       `json:"typ"`
}

// ————————————————————————————————————————————————————————————————————————
// Errors
// ————————————————————————————————————————————————————————————————————————

// Sentinel errors surfaced through the protocol layer. Use errors.Is to test.
var (
	ErrUnknownBacktest = errors.New("unknown backtest")
	ErrUnknownDataset  = errors.New("unknown dataset")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrClockExhausted  = errors.New("clock exhausted")
)
