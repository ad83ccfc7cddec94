package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

const eventWriteTimeout = 5 * time.Second

// EventHub fans admin events out to connected websocket clients.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan Event
	logger  *slog.Logger
}

func NewEventHub(logger *slog.Logger) *EventHub {
	return &EventHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan Event, 16),
		logger:  logger,
	}
}

func (h *EventHub) Run(ctx context.Context) {
	for {
		select {
		case evt := <-h.ch:
			h.send(evt)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *EventHub) send(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
		if err := conn.WriteJSON(evt); err != nil {
			h.logger.Debug("dropping event client", "error", err)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// Publish never blocks; events are dropped when the hub falls behind.
func (h *EventHub) Publish(evt Event) {
	select {
	case h.ch <- evt:
	default:
		h.logger.Warn("event dropped", "type", evt.Type)
	}
}

func (h *EventHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *EventHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *EventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
