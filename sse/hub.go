package sse

import (
	"path/filepath"
	"sync"

	"github.com/kbukum/chunkscribe/logger"
)

// clientBuffer is how far a client may fall behind before its events drop.
const clientBuffer = 64

// Client is one subscriber. Its ID is matched against publish patterns.
type Client struct {
	id     string
	events chan Event
}

func NewClient(id string) *Client {
	return &Client{id: id, events: make(chan Event, clientBuffer)}
}

func (c *Client) ID() string           { return c.id }
func (c *Client) Events() <-chan Event { return c.events }

// Send queues ev without blocking and reports whether it fit.
func (c *Client) Send(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// Hub fans published events out to the clients whose IDs match.
// A stopped hub refuses new clients and drops events.
type Hub struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	stopped bool
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{clients: make(map[string]*Client), log: log.WithComponent("sse")}
}

// Register adds c and returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[c.id] = c
	h.log.Debug("client registered", logger.Fields("client_id", c.id, "total_clients", len(h.clients)))
	return true
}

// Unregister removes c and closes its channel. Unknown clients are ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		delete(h.clients, c.id)
		close(c.events)
	}
}

// Publish queues ev for every client whose ID matches the glob pattern.
// Clients with a full buffer miss the event.
func (h *Hub) Publish(pattern string, ev Event) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		h.log.Error("bad publish pattern", logger.MergeWithError(logger.Fields("pattern", pattern), err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if ok, _ := filepath.Match(pattern, id); !ok {
			continue
		}
		if !c.Send(ev) {
			h.log.Warn("client lagging, event dropped", logger.Fields("client_id", id, "event", ev.Name))
		}
	}
}

// Stop closes every client channel. Later calls do nothing.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for id, c := range h.clients {
		close(c.events)
		delete(h.clients, id)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
