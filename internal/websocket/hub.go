package websocket

import (
	"encoding/json"

	"teamnet-go/internal/nettypes"

	"go.uber.org/zap"
)

// Hub maintains the set of connected clients keyed by user id and routes
// realtime events to the right socket. One connection per user; a newer
// connection for the same user replaces the older one.
type Hub struct {
	clients map[uint]*Client

	register   chan *Client
	unregister chan *unregisterRequest

	// Events aimed at a specific user, fed by the realtime consumer.
	direct chan *nettypes.RealtimeEvent

	logger *zap.Logger
}

// unregisterRequest carries the answer back to the leaving client: whether it
// was still the registered connection for its user.
type unregisterRequest struct {
	client *Client
	owned  chan bool
}

// NewHub creates a new Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *unregisterRequest),
		direct:     make(chan *nettypes.RealtimeEvent, 256),
		logger:     logger,
	}
}

// Deliver hands an event to the hub for delivery to its recipient.
// Non-blocking so a stalled hub never backs up the Kafka consumer; a
// dropped event only costs a realtime hint, the notification row remains.
func (h *Hub) Deliver(event *nettypes.RealtimeEvent) {
	select {
	case h.direct <- event:
	default:
		h.logger.Warn("hub direct channel full, dropping event",
			zap.Uint("recipientID", event.RecipientID))
	}
}

// Unregister removes the client from the hub if it is still the registered
// connection for its user, and reports whether it was. A replaced connection
// gets false and must leave presence alone for its successor.
func (h *Hub) Unregister(client *Client) bool {
	req := &unregisterRequest{client: client, owned: make(chan bool, 1)}
	h.unregister <- req
	return <-req.owned
}

// Run starts the hub loop. It owns the clients map; all access goes through
// the channels.
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.userID]; ok {
				h.logger.Info("replacing existing connection", zap.Uint("userID", client.userID))
				close(existing.send)
			}
			h.clients[client.userID] = client
			h.logger.Debug("client registered", zap.Uint("userID", client.userID))

		case req := <-h.unregister:
			// Only remove the stored client if it is this one; a replaced
			// connection unregistering must not tear down its successor.
			owned := false
			if stored, ok := h.clients[req.client.userID]; ok && stored == req.client {
				delete(h.clients, req.client.userID)
				close(req.client.send)
				owned = true
				h.logger.Debug("client unregistered", zap.Uint("userID", req.client.userID))
			}
			req.owned <- owned

		case event := <-h.direct:
			client, ok := h.clients[event.RecipientID]
			if !ok {
				// Recipient is not connected to this instance.
				continue
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal realtime event", zap.Error(err))
				continue
			}
			select {
			case client.send <- payload:
			default:
				// A full send buffer means a slow or dead client.
				h.logger.Warn("client send buffer full, dropping connection",
					zap.Uint("userID", event.RecipientID))
				close(client.send)
				delete(h.clients, event.RecipientID)
			}
		}
	}
}
