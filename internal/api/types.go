package api

import "uistd/pkg/types"

// InitResponse answers GET /init/{dataset}.
type InitResponse struct {
	BacktestID uint64          `json:"backtest_id"`
	Start      int64           `json:"start"`
	Frequency  types.Frequency `json:"frequency"`
}

// InfoResponse answers GET /backtest/{id}/info.
type InfoResponse struct {
	Version string `json:"version"`
	Dataset string `json:"dataset"`
}

// FetchQuotesResponse answers GET /backtest/{id}/fetch_quotes.
type FetchQuotesResponse struct {
	Quotes []types.Quote `json:"quotes"`
}

// TickResponse answers GET /backtest/{id}/tick.
type TickResponse struct {
	HasNext        bool          `json:"has_next"`
	ExecutedTrades []types.Trade `json:"executed_trades"`
	InsertedOrders []types.Order `json:"inserted_orders"`
}

// InsertOrderRequest is the body of POST /backtest/{id}/insert_order.
type InsertOrderRequest struct {
	Order types.Order `json:"order"`
}

// DeleteOrderRequest is the body of POST /backtest/{id}/delete_order.
type DeleteOrderRequest struct {
	OrderID types.OrderID `json:"order_id"`
}

// ErrorResponse is returned with every non-2xx response.
type ErrorResponse struct {
	Reason string `json:"reason"`
}

// TickEvent is broadcast over a session's event stream after every tick.
type TickEvent struct {
	SessionID      uint64        `json:"session_id"`
	HasNext        bool          `json:"has_next"`
	ExecutedTrades []types.Trade `json:"executed_trades"`
	InsertedOrders []types.Order `json:"inserted_orders"`
}
