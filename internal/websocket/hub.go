package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// BalanceUpdate is pushed to every connection a user holds whenever a
// deposit or settled transfer changes that user's balance.
type BalanceUpdate struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}

// Hub fans balance updates out to subscribed connections, keyed by user id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	h.logger.Debug("balance subscriber registered", zap.String("user_id", userID))
}

// Unregister removes client and closes its outbound queue, which ends the
// write pump. Repeated calls are no-ops.
func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID][client]; !ok {
		return
	}
	delete(h.clients[userID], client)
	close(client.send)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Subscribers reports how many connections are open for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// BroadcastBalance never blocks: a client whose buffer is full misses the
// update and will see the next one.
func (h *Hub) BroadcastBalance(userID string, update BalanceUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		h.logger.Error("encode balance update", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("balance update dropped", zap.String("user_id", userID))
		}
	}
}
