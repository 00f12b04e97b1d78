package ws

import (
	"sync"

	"github.com/KoshmareG/KHSM/internal/logger"
	"github.com/KoshmareG/KHSM/internal/service"
)

// Hub tracks open connections per user and pushes game updates to them.
// A user may have several tabs open; every one gets the update.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	ConnectedClients.Inc()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	// закрываем под локом, SendTo пишет под RLock
	close(c.Send)
	ConnectedClients.Dec()
}

// Connected returns how many connections userID has open.
func (h *Hub) Connected(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendTo queues a message for every connection of userID. Slow clients with
// a full queue miss the message.
func (h *Hub) SendTo(userID int64, msgType string, payload any) {
	msg, err := encode(msgType, payload)
	if err != nil {
		logger.Error("ws encode failed", "type", msgType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			DroppedMessages.Inc()
			logger.Warn("ws send queue full, message dropped", "user_id", userID, "type", msgType)
		}
	}
}

// NotifyGame pushes the game state to its owner.
func (h *Hub) NotifyGame(userID int64, v *service.GameView) {
	h.SendTo(userID, MsgGameState, v)
}
