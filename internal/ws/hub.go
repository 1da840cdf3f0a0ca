package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"AmigoCRM/bot/whatsapp"
	"AmigoCRM/entity"
)

// ClientMessageHandler handles incoming WebSocket messages from CRM clients.
type ClientMessageHandler interface {
	HandleMarkRead(principal, phone string) error
}

// Event represents a WebSocket event sent to CRM clients.
type Event struct {
	Type string      `json:"type"` // "new_message", "session_status"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the handler for incoming client messages.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastMessage sends a new_message event to all connected CRM clients.
func (h *Hub) BroadcastMessage(conv entity.Conversation) {
	h.broadcast <- &Event{
		Type: "new_message",
		Data: conv,
	}
}

// BroadcastSessionStatus sends the WhatsApp session state to all
// connected CRM clients, including the pairing QR while one is
// pending.
func (h *Hub) BroadcastSessionStatus(status whatsapp.Status) {
	h.broadcast <- &Event{
		Type: "session_status",
		Data: status,
	}
}

// clientEvent represents an incoming WebSocket message from a CRM client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(principal string, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		if h.log != nil {
			h.log.Warn("failed to parse client ws message", slog.String("error", err.Error()))
		}
		return
	}

	switch event.Type {
	case "mark_read":
		var data struct {
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			if h.log != nil {
				h.log.Warn("failed to parse mark_read data", slog.String("error", err.Error()))
			}
			return
		}
		if data.Phone == "" {
			return
		}
		if err := h.handler.HandleMarkRead(principal, data.Phone); err != nil {
			if h.log != nil {
				h.log.Error("failed to handle mark_read",
					slog.String("principal", principal),
					slog.String("phone", data.Phone),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
