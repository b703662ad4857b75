package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message announces a planner change to connected clients. Seq grows by
// one per broadcast, so a client that sees a gap (it was too slow and a
// message was dropped) refetches instead of trusting its copy.
type Message struct {
	Seq    uint64         `json:"seq"`
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub fans planner changes out to websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	seq     uint64
	dropped uint64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "websocket"),
	}
}

// Register adds c and queues a hello carrying the current sequence
// number, the baseline for gap detection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}

	hello := NewMessage("feed", "hello", 0, nil)
	hello.Seq = h.seq
	if data, err := json.Marshal(hello); err == nil {
		c.send <- data
	}
}

// Unregister removes c and closes its send channel. Calling it twice is
// safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast stamps msg with the next sequence number and queues it for
// every client subscribed to its entity. A client whose buffer is full
// misses the message.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	msg.Seq = h.seq
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	for c := range h.clients {
		if !c.wants(msg.Entity) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.dropped++
			h.logger.Debug("client buffer full, dropping message", "type", msg.Type, "seq", msg.Seq)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Seq returns the sequence number of the last broadcast.
func (h *Hub) Seq() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seq
}

// Dropped returns how many queued deliveries were skipped for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
