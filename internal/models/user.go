package models

import "time"

// User represents a team member account. Profile fields are what the
// member directory and suggestion ranking read; everything else is auth.
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // never exposed
	Email        string `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	FullName     string `gorm:"type:varchar(100)" json:"fullName,omitempty"`
	AvatarURL    string `gorm:"type:varchar(255)" json:"avatarUrl,omitempty"`
	Bio          string `gorm:"type:text" json:"bio,omitempty"`

	// GraduationYear is nil for members without one (parents, mentors).
	GraduationYear *int     `gorm:"index" json:"graduationYear,omitempty"`
	Skills         []string `gorm:"serializer:json" json:"skills,omitempty"`
	Interests      []string `gorm:"serializer:json" json:"interests,omitempty"`

	Online     bool       `gorm:"default:false" json:"online"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`

	Roles []Role `gorm:"foreignKey:UserID" json:"roles,omitempty"`
}

// UserBasicInfo holds minimal public information about a user.
// Used for partner info in connection lists and conversation summaries.
type UserBasicInfo struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"fullName,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	GraduationYear *int   `json:"graduationYear,omitempty"`
	Online         bool   `json:"online"`
}

// HasApprovedRole reports whether the user carries an approved role with the
// given name. Pending or rejected role requests do not count.
func (u *User) HasApprovedRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name && r.Status == RoleStatusApproved {
			return true
		}
	}
	return false
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
