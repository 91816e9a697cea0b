package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Bio       string    `gorm:"type:text" json:"bio"`
	FirstName string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100)" json:"last_name"`

	// Set by the seed command for the bootstrap account, never via the API.
	IsSuperuser bool `gorm:"not null;default:false" json:"-"`
	IsStaff     bool `gorm:"not null;default:false" json:"-"`

	// Confirmed flips once, when the first confirmation code is exchanged.
	Confirmed   bool       `gorm:"not null;default:false" json:"-"`
	LastLoginAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports admin capability. Derived, never stored.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

// IsModerator reports moderator capability. Derived, never stored.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.IsStaff
}
