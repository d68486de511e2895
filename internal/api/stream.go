package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"uistd/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Hub broadcasts TickEvents to every client subscribed to a backtest
// session's stream. It is pure observability — no message flows from a
// client back into the engine.
type Hub struct {
	mu         sync.RWMutex
	clients    map[session.ID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan sessionEvent
	logger     *slog.Logger
}

type sessionEvent struct {
	session session.ID
	event   TickEvent
}

// NewHub constructs an idle Hub; call Run in a goroutine to start it.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[session.ID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan sessionEvent, 256),
		logger:     logger.With("component", "stream-hub"),
	}
}

// Run processes registration, unregistration, and broadcasts until the
// process exits.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.session] == nil {
				h.clients[c.session] = make(map[*Client]bool)
			}
			h.clients[c.session][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[c.session]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.send)
				}
			}
			h.mu.Unlock()

		case evt := <-h.broadcast:
			data, err := json.Marshal(evt.event)
			if err != nil {
				h.logger.Error("marshal tick event", "error", err)
				continue
			}
			h.mu.RLock()
			for c := range h.clients[evt.session] {
				select {
				case c.send <- data:
				default:
					close(c.send)
					delete(h.clients[evt.session], c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastTick fans a tick result out to every client subscribed to
// session. Dropped silently (with a log line) if the broadcast channel is
// saturated — this stream is best-effort observability, never a source of
// truth for engine state.
func (h *Hub) BroadcastTick(sessionID session.ID, event TickEvent) {
	select {
	case h.broadcast <- sessionEvent{session: sessionID, event: event}:
	default:
		h.logger.Warn("broadcast channel full, dropping tick event", "session", sessionID)
	}
}

// Client is one WebSocket subscriber to a single session's tick stream.
type Client struct {
	hub     *Hub
	session session.ID
	conn    *websocket.Conn
	send    chan []byte
}

// NewClient registers conn with hub as a subscriber of session and starts
// its read/write pumps.
func NewClient(hub *Hub, sessionID session.ID, conn *websocket.Conn) *Client {
	c := &Client{hub: hub, session: sessionID, conn: conn, send: make(chan []byte, 16)}
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
	return c
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		// Stream is read-only; any client message is ignored.
	}
}

// upgrader is shared across stream handlers. Origin checking stays
// permissive: the server has no authentication layer (a deliberate
// Non-goal) so there is no session boundary an origin check would protect.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
