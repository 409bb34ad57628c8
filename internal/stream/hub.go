// Package stream pushes entity-change events to subscribed clients over
// WebSocket, so list views update continuously while another device edits.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Event is one mutation notification: which entity changed, how, and which
// record. Subscribers re-query through the repository; the event carries no
// row data on purpose, so a subscriber always reads from the currently
// active backend.
type Event struct {
	Type        string `json:"type"`
	Entity      string `json:"entity"`
	Action      string `json:"action"`
	ID          int64  `json:"id,omitempty"`
	ChecklistID int64  `json:"checklist_id,omitempty"`
}

// NewEvent builds an Event with Type derived from entity and action.
func NewEvent(entity, action string, id, checklistID int64) Event {
	return Event{
		Type:        fmt.Sprintf("%s_%s", entity, action),
		Entity:      entity,
		Action:      action,
		ID:          id,
		ChecklistID: checklistID,
	}
}

// Hub tracks the active subscribers and fans events out to them.
// Subscribers with a full buffer miss the event rather than block a
// mutation; they catch up on their next re-query.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to every subscriber.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Buffer full, drop rather than block the mutation path.
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
