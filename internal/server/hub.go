// ABOUTME: Websocket hub pushing restaurant change notifications to map clients
// ABOUTME: Implements bookmarks.Notifier; slow clients are dropped instead of blocking writers

package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/harper/matjip/internal/bookmarks"
)

// EventRestaurantsChanged is the type of every change event.
const EventRestaurantsChanged = "restaurants.changed"

const (
	sendBuffer   = 8
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 5 * time.Second
)

// Event is the JSON message sent to websocket clients.
type Event struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks connected websocket clients.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
	logger  *slog.Logger
	now     func() time.Time
}

var _ bookmarks.Notifier = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
		now:     time.Now,
	}
}

// Notify broadcasts a change event to every client.
func (h *Hub) Notify(c bookmarks.Change) {
	h.Broadcast(Event{
		Type:      EventRestaurantsChanged,
		Action:    c.Action,
		ID:        c.ID,
		Timestamp: h.now().UTC(),
	})
}

// Broadcast sends evt to every client without blocking.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("broadcast marshal error", slog.Any("error", err))
		return
	}

	// Sends happen under the read lock so detach cannot close a channel
	// mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("ws send buffer full", slog.String("clientId", c.id))
			go h.detach(c)
		}
	}
}

// ClientCount reports how many clients are attached.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Attach registers conn and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("ws client attached", slog.String("clientId", c.id))

	go c.writePump()
	go c.readPump()
	return c
}

func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	c.close()
	h.mu.Unlock()

	if ok {
		h.logger.Info("ws client detached", slog.String("clientId", c.id))
	}
}

// CloseAll detaches every client.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.detach(c)
	}
}

// Client is one websocket connection.
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

// ID returns the client's generated identifier.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

func (c *Client) writePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.Warn("websocket write error", slog.String("clientId", c.id), slog.Any("error", err))
				go c.hub.detach(c)
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				c.hub.logger.Warn("websocket ping error", slog.String("clientId", c.id), slog.Any("error", err))
				go c.hub.detach(c)
				return
			}
		}
	}
}

// readPump discards client messages; it only keeps the deadline fresh and
// notices disconnects.
func (c *Client) readPump() {
	defer c.hub.detach(c)

	c.conn.SetReadLimit(1 << 12)
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.logger.Debug("websocket read error", slog.String("clientId", c.id), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	}
}
