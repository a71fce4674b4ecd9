package ws

import (
	"context"
	"sync"

	"skill-staffing/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub tracks websocket clients per user.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *logger.Logger

	// done is closed when Run returns. stateMu guards stopped and is held
	// for reading across every Register send.
	done    chan struct{}
	stateMu sync.RWMutex
	stopped bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger.OrNop(log).With("component", "ws"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stop()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			total := h.countLocked()
			h.mutex.Unlock()
			h.logger.Info("ws connected", "user_id", client.userID, "total_clients", total)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mutex.Unlock()
			h.logger.Info("ws disconnected", "user_id", client.userID, "total_clients", total)
		}
	}
}

// Register hands client to the running hub. It returns false, and closes the
// client, once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	if h.stopped {
		client.close()
		return false
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		client.close()
		return false
	}
}

func (h *Hub) stop() {
	close(h.done)

	// Waits for Register calls already past the stopped check.
	h.stateMu.Lock()
	h.stopped = true
	h.stateMu.Unlock()

	for {
		select {
		case c := <-h.register:
			if c != nil {
				c.close()
			}
		default:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	default:
		h.mutex.Lock()
		h.removeLocked(client)
		h.mutex.Unlock()
	}
}

// SendToUser queues message for every connection of userID and returns how
// many accepted it. Connections with a full send buffer are dropped.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) int {
	h.mutex.RLock()
	snapshot := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		snapshot = append(snapshot, c)
	}
	h.mutex.RUnlock()

	sent := 0
	for _, c := range snapshot {
		if c.trySend(message) {
			sent++
			continue
		}
		h.logger.Warn("ws client too slow, dropping", "user_id", userID)
		h.Unregister(c)
	}
	return sent
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	client.close()
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
