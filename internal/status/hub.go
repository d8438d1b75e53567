package status

import (
	"log/slog"
	"sync"
)

// Publisher is what the Run Driver and executors hold: a handle bound to
// one run that publishes status events without knowing about subscribers.
type Publisher interface {
	Publish(nodeID string, s Status)
}

// broadcastMsg is one event in flight from a publisher to the hub's event
// loop.
type broadcastMsg struct {
	runID string
	event Event
}

// Hub is the in-process pub/sub bus for the "status" topic. Subscribers
// register per run; delivery is per-subscriber FIFO (spec §4.6) via each
// client's own buffered channel. An event for a client whose buffer is
// full is dropped for that client and a warning is logged, so delivery is
// not guaranteed. Grounded directly on
// internal/infrastructure/websocket/hub.go's register/unregister/broadcast
// event loop and per-index subscription bookkeeping.
type Hub struct {
	clients   map[*Client]bool
	byRunID   map[string]map[*Client]bool
	register  chan *Client
	unregister chan *Client
	broadcast chan *broadcastMsg

	logger *slog.Logger
	mu     sync.RWMutex
}

// NewHub builds a Hub. Call Run in a goroutine to start its event loop.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		byRunID:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		logger:     logger,
	}
}

// Run starts the hub's main event loop; it blocks until ctx-independent
// shutdown (there is none exposed yet — callers run this for the process
// lifetime, exactly as the teacher's Hub.Run does).
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	if h.byRunID[c.runID] == nil {
		h.byRunID[c.runID] = make(map[*Client]bool)
	}
	h.byRunID[c.runID][c] = true
	h.logger.Debug("status channel client registered", "client_id", c.id, "run_id", c.runID)
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if clients, ok := h.byRunID[c.runID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.byRunID, c.runID)
		}
	}
	h.logger.Debug("status channel client unregistered", "client_id", c.id, "run_id", c.runID)
}

func (h *Hub) deliver(msg *broadcastMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.byRunID[msg.runID] {
		select {
		case client.send <- msg.event:
		default:
			h.logger.Warn("status channel client buffer full, dropping event", "client_id", client.id, "run_id", msg.runID)
		}
	}
}

// RunPublisher returns a Publisher bound to one workflow run.
func (h *Hub) RunPublisher(runID string) Publisher {
	return &hubPublisher{hub: h, runID: runID}
}

type hubPublisher struct {
	hub   *Hub
	runID string
}

func (p *hubPublisher) Publish(nodeID string, s Status) {
	p.hub.broadcast <- &broadcastMsg{
		runID: p.runID,
		event: Event{WorkflowRunID: p.runID, NodeID: nodeID, Status: s},
	}
}

// Register connects a client to the hub.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister disconnects a client from the hub.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// ClientCount returns the number of connected clients, for diagnostics.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
