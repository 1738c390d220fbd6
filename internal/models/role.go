package models

// RoleName identifies a member's position on the team.
type RoleName string

const (
	RoleStudent RoleName = "student"
	RoleParent  RoleName = "parent"
	RoleMentor  RoleName = "mentor"
	RoleAlumni  RoleName = "alumni"
	RoleAdmin   RoleName = "admin"
)

// ValidRoleName reports whether name is one of the known role names.
func ValidRoleName(name RoleName) bool {
	switch name {
	case RoleStudent, RoleParent, RoleMentor, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// RoleStatus tracks the admin approval gate for a role request.
type RoleStatus string

const (
	RoleStatusPending  RoleStatus = "pending"
	RoleStatusApproved RoleStatus = "approved"
	RoleStatusRejected RoleStatus = "rejected"
)

// Role is a role grant for a user. Created in pending state when requested;
// only an admin action moves it to approved. Never auto-approved.
type Role struct {
	BaseModel
	UserID uint       `gorm:"not null;index:idx_role_user" json:"userId"`
	Name   RoleName   `gorm:"type:varchar(20);not null;index:idx_role_user" json:"name"`
	Status RoleStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}

// RoleWithUser is a DTO pairing a role request with basic requester info,
// used by the admin approval listing.
type RoleWithUser struct {
	Role
	User *UserBasicInfo `json:"user"`
}

// TableName specifies the table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
