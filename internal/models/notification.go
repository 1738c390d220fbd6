package models

// NotificationType tags what triggered a notification.
type NotificationType string

const (
	NotificationConnectionRequest  NotificationType = "connection_request"
	NotificationConnectionAccepted NotificationType = "connection_accepted"
	NotificationMessageReceived    NotificationType = "message_received"
	NotificationSystem             NotificationType = "system"
)

// Notification is created as a side effect of a connection or messaging
// event. Only the Read flag ever mutates after creation; rows are retained
// indefinitely.
type Notification struct {
	BaseModel
	RecipientID uint             `gorm:"not null;index" json:"recipientId"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Body        string           `gorm:"type:text" json:"body,omitempty"`
	Link        string           `gorm:"type:varchar(255)" json:"link,omitempty"` // optional deep link
	Read        bool             `gorm:"not null;default:false;index" json:"read"`
}

// NotificationListView is the read model for the notification dropdown:
// the most recent items plus the total unread count.
type NotificationListView struct {
	Items       []Notification `json:"items"`
	UnreadCount int64          `json:"unreadCount"`
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}
