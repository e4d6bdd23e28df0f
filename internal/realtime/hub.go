// Package realtime pushes task notifications to the websocket clients of staff members.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"delegation-api/internal/logging"
)

// Client represents a single websocket client connection.
// The network conn itself is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event types pushed to clients
const (
	TaskCreated      = "task_created"
	TaskDeleted      = "task_deleted"
	StatusChanged    = "status_changed"
	DeadlineExtended = "deadline_extended"
	ExecutorsAdded   = "executors_added"
	TaskOverdue      = "task_overdue"
)

// Event is the JSON message sent to clients.
type Event struct {
	Type   string    `json:"type"`
	TaskID uint      `json:"taskId"`
	Data   any       `json:"data,omitempty"`
	SentAt time.Time `json:"sentAt"`
}

// Hub maintains active staff connections and broadcasts events to them.
type Hub struct {
	mu               sync.RWMutex
	staffIDToClients map[uint]map[Client]struct{}
	log              *slog.Logger
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = NewHub()
	})
	return hubInstance
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		staffIDToClients: make(map[uint]map[Client]struct{}),
		log:              logging.Component("realtime"),
	}
}

// Register adds a client under a staff ID.
func (h *Hub) Register(staffID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.staffIDToClients[staffID]; !ok {
		h.staffIDToClients[staffID] = make(map[Client]struct{})
	}
	h.staffIDToClients[staffID][client] = struct{}{}
}

// Unregister removes a client; a staff member with no clients left is dropped.
func (h *Hub) Unregister(staffID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.staffIDToClients[staffID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.staffIDToClients, staffID)
		}
	}
}

// Connections returns how many clients a staff member has open.
func (h *Hub) Connections(staffID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.staffIDToClients[staffID])
}

// Broadcast sends a raw message to every client of each staff member, once per staff id.
func (h *Hub) Broadcast(staffIDs []uint, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	done := make(map[uint]bool, len(staffIDs))
	for _, id := range staffIDs {
		if done[id] {
			continue
		}
		done[id] = true
		for c := range h.staffIDToClients[id] {
			// failed clients are cleaned up by their handler
			if c.Send(message) {
				sent++
			}
		}
	}
	return sent
}

// Notify encodes event and broadcasts it to staffIDs.
func (h *Hub) Notify(staffIDs []uint, event Event) {
	if len(staffIDs) == 0 {
		return
	}
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}
	sent := h.Broadcast(staffIDs, msg)
	h.log.Debug("event sent", "type", event.Type, "task_id", event.TaskID, "clients", sent)
}
