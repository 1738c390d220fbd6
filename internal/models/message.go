package models

import "time"

// MaxMessageLength is the maximum message content length in characters.
const MaxMessageLength = 5000

// Message is a direct message between two users. Immutable once created
// except for the Read flag, which only the receiver's session flips.
// Messages are never deleted.
type Message struct {
	BaseModel
	SenderID   uint   `gorm:"not null;index:idx_message_pair" json:"senderId"`
	ReceiverID uint   `gorm:"not null;index:idx_message_pair" json:"receiverId"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Read       bool   `gorm:"not null;default:false" json:"read"`
}

// PartnerID returns the other participant of the message relative to the
// viewing user.
func (m *Message) PartnerID(viewerID uint) uint {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ConversationSummary is the derived per-partner view of a user's inbox.
// Conversations are never stored; they are grouped from the message set.
type ConversationSummary struct {
	PartnerID       uint      `json:"partnerId"`
	PartnerName     string    `json:"partnerName"`
	PartnerAvatar   string    `json:"partnerAvatar,omitempty"`
	PartnerOnline   bool      `json:"partnerOnline"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}
