package websocket

import (
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
)

// VoucherUpdate is pushed to every connected till after a voucher changes.
type VoucherUpdate struct {
	Action    string              `json:"action"`
	CouponID  string              `json:"couponId"`
	RestValue decimal.NullDecimal `json:"restValue"`
	Used      bool                `json:"used"`
	Location  string              `json:"location"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a client logged in at location.
func (h *Hub) Register(location string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[location] == nil {
		h.clients[location] = make(map[*Client]struct{})
	}
	h.clients[location][client] = struct{}{}
}

func (h *Hub) Unregister(location string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[location] == nil {
		return
	}
	delete(h.clients[location], client)
	if len(h.clients[location]) == 0 {
		delete(h.clients, location)
	}
}

// Connected counts open connections per location.
func (h *Hub) Connected() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	counts := make(map[string]int, len(h.clients))
	for location, clients := range h.clients {
		counts[location] = len(clients)
	}
	return counts
}

// BroadcastVoucher never blocks; clients with a full queue miss the update.
func (h *Hub) BroadcastVoucher(update VoucherUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- payload:
			default:
			}
		}
	}
}
