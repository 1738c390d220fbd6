package nettypes

import (
	"encoding/json"
	"time"
)

// EventType tags a realtime/broker event.
type EventType string

const (
	ConnectionRequestEvent  EventType = "connection_request"
	ConnectionAcceptedEvent EventType = "connection_accepted"
	MessageReceivedEvent    EventType = "message_received"
	NotificationEvent       EventType = "notification"
)

// ConnectionEvent is the payload published on the connection events topic
// when a request is sent or accepted. The consumer turns it into a
// Notification row for the recipient.
type ConnectionEvent struct {
	Type         EventType `json:"type"` // connection_request or connection_accepted
	ConnectionID uint      `json:"connectionId"`
	RequesterID  uint      `json:"requesterId"`
	ReceiverID   uint      `json:"receiverId"`
	Timestamp    time.Time `json:"timestamp"`
}

// MessageEvent is the payload published on the message events topic when a
// new direct message is persisted. Preview is a truncated slice of the
// content for notification bodies; the full content stays in the database.
type MessageEvent struct {
	MessageID  uint      `json:"messageId"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Preview    string    `json:"preview"`
	Timestamp  time.Time `json:"timestamp"`
}

// RealtimeEvent is the envelope published on the realtime outgoing topic and
// delivered to the recipient's WebSocket client. Subscribers treat delivery
// as a hint to re-fetch; receiving the same event twice is harmless.
type RealtimeEvent struct {
	Type        EventType       `json:"type"`
	RecipientID uint            `json:"recipientId"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ClientFrame is the only frame clients send over the WebSocket. Clients
// receive events; they do not publish content through the socket.
type ClientFrame struct {
	Type string `json:"type"`
}

// HeartbeatFrame is the client frame type that refreshes presence.
const HeartbeatFrame = "heartbeat"
