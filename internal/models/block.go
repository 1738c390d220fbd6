package models

// BlockRecord is a one-directional block of one user by another. Blocks are
// silent: the blocked party is never informed. Access-policy suppression of
// visibility is enforced at the persistence layer; the messaging guard here
// only refuses new sends between blocked pairs.
type BlockRecord struct {
	BaseModel
	BlockerID uint   `gorm:"not null;index:idx_block_users" json:"blockerId"`
	BlockedID uint   `gorm:"not null;index:idx_block_users" json:"blockedId"`
	Reason    string `gorm:"type:text" json:"reason,omitempty"`
}

// TableName specifies the table name for the BlockRecord model.
func (BlockRecord) TableName() string {
	return "block_records"
}
