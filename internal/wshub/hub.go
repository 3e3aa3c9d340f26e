// Package wshub is the live book/trade feed: a per-room connection-set
// broadcaster, rooms keyed by instrument ticker.
package wshub

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Msg is a message broadcast to subscribers of one instrument's room. The
// orders service publishes "book_snapshot" after each matching pass; it
// publishes no per-trade message.
type Msg struct {
	Type   string `json:"type"`
	Ticker string `json:"ticker"`
	Data   any    `json:"data"`
}

// Hub manages per-instrument WebSocket subscriptions.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*conn]bool
	allConn map[*conn]bool
	log     zerolog.Logger
}

type conn struct {
	ws     *websocket.Conn
	send   chan []byte
	hub    *Hub
	ticker string
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*conn]bool),
		allConn: make(map[*conn]bool),
		log:     log.With().Str("component", "wshub").Logger(),
	}
}

// Publish broadcasts msgType/data to every subscriber of ticker's room. A
// slow client's send buffer fills and the message is dropped for it rather
// than blocking the matching pass that produced the update.
func (h *Hub) Publish(ticker, msgType string, data any) {
	msg := Msg{Type: msgType, Ticker: ticker, Data: data}
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal broadcast message")
		return
	}
	h.mu.RLock()
	room := h.rooms[ticker]
	h.mu.RUnlock()
	for c := range room {
		select {
		case c.send <- b:
		default:
		}
	}
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &conn{ws: wsConn, send: make(chan []byte, 64), hub: h}
	h.mu.Lock()
	h.allConn[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (c *conn) readPump() {
	defer func() {
		c.hub.removeConn(c)
		c.ws.Close()
	}()
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			break
		}
		var sub struct {
			Action string `json:"action"`
			Ticker string `json:"ticker"`
		}
		if err := json.Unmarshal(msg, &sub); err != nil {
			continue
		}
		switch sub.Action {
		case "subscribe":
			c.hub.subscribe(c, sub.Ticker)
		case "unsubscribe":
			c.hub.unsubscribe(c, sub.Ticker)
		}
	}
}

func (c *conn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func (h *Hub) subscribe(c *conn, ticker string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.ticker != "" {
		h.removeFromRoomLocked(c, c.ticker)
	}
	c.ticker = ticker
	room, ok := h.rooms[ticker]
	if !ok {
		room = make(map[*conn]bool)
		h.rooms[ticker] = room
	}
	room[c] = true
}

func (h *Hub) unsubscribe(c *conn, ticker string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoomLocked(c, ticker)
	if c.ticker == ticker {
		c.ticker = ""
	}
}

func (h *Hub) removeConn(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.allConn, c)
	if c.ticker != "" {
		h.removeFromRoomLocked(c, c.ticker)
	}
	close(c.send)
}

func (h *Hub) removeFromRoomLocked(c *conn, ticker string) {
	room, ok := h.rooms[ticker]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, ticker)
	}
}
