package models

// ConnectionStatus defines the lifecycle state of a connection request.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// Connection is a directed edge from the requesting user to the receiving
// user. Valid transitions are pending -> accepted and pending -> rejected;
// accepted or pending connections may be hard-deleted (removed/cancelled)
// but never revert to pending.
type Connection struct {
	BaseModel
	RequesterID uint             `gorm:"not null;index:idx_connection_users" json:"requesterId"`
	ReceiverID  uint             `gorm:"not null;index:idx_connection_users" json:"receiverId"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}

// PartnerID returns the side of the connection that is not the viewer.
func (c *Connection) PartnerID(viewerID uint) uint {
	if c.RequesterID == viewerID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// Involves reports whether the user is on either side of the connection.
func (c *Connection) Involves(userID uint) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// IsIncomingFor reports whether the connection is a pending request
// addressed to the viewer.
func (c *Connection) IsIncomingFor(viewerID uint) bool {
	return c.ReceiverID == viewerID && c.Status == ConnectionStatusPending
}

// PairKey returns a canonical (smaller, larger) ordering of the two user
// ids. Read models de-duplicate connections by this unordered pair.
func (c *Connection) PairKey() [2]uint {
	if c.RequesterID < c.ReceiverID {
		return [2]uint{c.RequesterID, c.ReceiverID}
	}
	return [2]uint{c.ReceiverID, c.RequesterID}
}

// ConnectionWithPartner is a DTO that pairs a connection with basic info
// about the viewer's partner. Used for API list responses.
type ConnectionWithPartner struct {
	Connection
	Partner *UserBasicInfo `json:"partner"`
}

// ConnectionListView is the read model exposed to the presentation layer:
// a user's connections partitioned by status and direction.
type ConnectionListView struct {
	Accepted        []*ConnectionWithPartner `json:"accepted"`
	IncomingPending []*ConnectionWithPartner `json:"incomingPending"`
	OutgoingPending []*ConnectionWithPartner `json:"outgoingPending"`
}

// TableName specifies the table name for the Connection model.
func (Connection) TableName() string {
	return "connections"
}
