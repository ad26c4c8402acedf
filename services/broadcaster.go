// Package services provides the notification broadcast service: enhancement
// events pushed to WebSocket subscribers at the same DOM mutation points the
// host wrapper may layer its own custom events on.
package services

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/civicui/enhance-go/models"
)

// Hub fans enhancement notifications out to connected subscribers. It
// implements the Notifier interface both enhancers accept.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// Broadcaster is the process-wide hub instance.
var Broadcaster = NewHub()

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// AddClient registers a subscriber connection.
func (h *Hub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

// RemoveClient drops and closes a subscriber connection.
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// ClientCount returns the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify pushes one notification to every subscriber. A write failure
// drops that subscriber; delivery is best-effort.
func (h *Hub) Notify(n models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dead []*websocket.Conn
	for conn := range h.clients {
		if err := conn.WriteJSON(n); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.clients, conn)
		conn.Close()
		log.Printf("broadcaster: dropped unreachable subscriber")
	}
}
