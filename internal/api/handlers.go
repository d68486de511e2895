package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"uistd/internal/metrics"
	"uistd/internal/ratelimit"
	"uistd/internal/session"
	"uistd/pkg/types"
)

// Handlers holds every dependency the protocol surface needs: the session
// registry it fronts, the rate limiter guarding mutating routes, the event
// hub for the stream route, the metrics registry, and a logger.
type Handlers struct {
	registry *session.Registry
	limiter  *ratelimit.Limiter
	hub      *Hub
	metrics  *metrics.Registry
	logger   *slog.Logger
}

// NewHandlers wires a Handlers instance. m may be nil to disable metrics
// reporting.
func NewHandlers(registry *session.Registry, limiter *ratelimit.Limiter, hub *Hub, m *metrics.Registry, logger *slog.Logger) *Handlers {
	return &Handlers{
		registry: registry,
		limiter:  limiter,
		hub:      hub,
		metrics:  m,
		logger:   logger.With("component", "api-handlers"),
	}
}

// HandleHealth answers GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleInit answers GET /init/{dataset}.
func (h *Handlers) HandleInit(w http.ResponseWriter, r *http.Request) {
	datasetName := r.PathValue("dataset")

	if err := h.limiter.WaitRead(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "rate limited")
		return
	}

	id, err := h.registry.Init(datasetName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SessionsActive.Set(float64(h.registry.SessionCount()))
	}

	now, _ := h.registry.Now(id)
	freq, _ := h.registry.Frequency(id)

	writeJSON(w, http.StatusOK, InitResponse{
		BacktestID: uint64(id),
		Start:      now,
		Frequency:  freq,
	})
}

// HandleInfo answers GET /backtest/{id}/info.
func (h *Handlers) HandleInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.limiter.WaitRead(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "rate limited")
		return
	}

	datasetName, err := h.registry.Info(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InfoResponse{Version: "1.0", Dataset: datasetName})
}

// HandleFetchQuotes answers GET /backtest/{id}/fetch_quotes.
func (h *Handlers) HandleFetchQuotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.limiter.WaitRead(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "rate limited")
		return
	}

	quotes, err := h.registry.FetchQuotes(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FetchQuotesResponse{Quotes: quotes})
}

// HandleTick answers GET /backtest/{id}/tick.
func (h *Handlers) HandleTick(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.limiter.WaitTick(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "rate limited")
		return
	}

	res, err := h.registry.Tick(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		sess := strconv.FormatUint(uint64(id), 10)
		h.metrics.TicksTotal.WithLabelValues(sess).Inc()
		for _, tr := range res.ExecutedTrades {
			h.metrics.TradesTotal.WithLabelValues(sess, string(tr.Typ)).Inc()
		}
	}

	h.hub.BroadcastTick(id, TickEvent{
		SessionID:      uint64(id),
		HasNext:        res.HasNext,
		ExecutedTrades: res.ExecutedTrades,
		InsertedOrders: res.InsertedOrders,
	})

	writeJSON(w, http.StatusOK, TickResponse{
		HasNext:        res.HasNext,
		ExecutedTrades: res.ExecutedTrades,
		InsertedOrders: res.InsertedOrders,
	})
}

// HandleInsertOrder answers POST /backtest/{id}/insert_order.
func (h *Handlers) HandleInsertOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req InsertOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := validateOrder(req.Order); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidOrder")
		return
	}
	if err := h.limiter.WaitMutate(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "rate limited")
		return
	}

	if err := h.registry.InsertOrder(id, req.Order); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// HandleDeleteOrder answers POST /backtest/{id}/delete_order.
func (h *Handlers) HandleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req DeleteOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.limiter.WaitMutate(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "rate limited")
		return
	}

	if err := h.registry.DeleteOrder(id, req.OrderID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// HandleStream upgrades GET /backtest/{id}/stream to a WebSocket and
// subscribes the connection to that session's tick events.
func (h *Handlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if _, err := h.registry.Info(id); err != nil {
		writeDomainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	NewClient(h.hub, id, conn)
}

func parseID(w http.ResponseWriter, r *http.Request) (session.ID, bool) {
	raw := r.PathValue("id")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UnknownBacktest")
		return 0, false
	}
	return session.ID(n), true
}

func validateOrder(o types.Order) error {
	if !o.Shares.IsPositive() {
		return types.ErrInvalidOrder
	}
	if o.RequiresPrice() && o.Price == nil {
		return types.ErrInvalidOrder
	}
	if !o.RequiresPrice() && o.Price != nil {
		return types.ErrInvalidOrder
	}
	return nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrUnknownBacktest):
		writeError(w, http.StatusBadRequest, "UnknownBacktest")
	case errors.Is(err, types.ErrUnknownDataset):
		writeError(w, http.StatusBadRequest, "UnknownDataset")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, ErrorResponse{Reason: reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
