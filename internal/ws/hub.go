package ws

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// ctx is cancelled when the client disconnects.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	jobCancel context.CancelFunc // non-nil while a run is in flight
}

// Hub manages WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	logger  *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		if c.cancel != nil {
			c.cancel()
		}
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Client buffer full, skip
			h.logger.Warn("client buffer full, dropping broadcast")
		}
	}
}

// SendTo queues msg for one client. It reports false if the client is gone
// or its buffer is full.
func (h *Hub) SendTo(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		h.logger.Warn("client buffer full, dropping message")
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// startJob installs cancel as the client's in-flight run. It reports false
// if another run is already in flight.
func (c *Client) startJob(cancel context.CancelFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jobCancel != nil {
		return false
	}
	c.jobCancel = cancel
	return true
}

func (c *Client) finishJob() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jobCancel != nil {
		c.jobCancel()
		c.jobCancel = nil
	}
}

// cancelJob cancels the in-flight run, if any.
func (c *Client) cancelJob() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jobCancel == nil {
		return false
	}
	c.jobCancel()
	return true
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
