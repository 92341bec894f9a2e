package models

import (
	"strings"
	"time"
)

// Role is a named set of users. Roles are flat; a user may hold several.
type Role string

const (
	RoleManager      Role = "Manager"
	RoleDeliveryCrew Role = "Delivery crew"
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleDeliveryCrew
}

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:150;uniqueIndex;not null"`
	Email        string    `gorm:"size:254"`
	PasswordHash string    `gorm:"size:255;not null"`
	IsSuperuser  bool      `gorm:"not null"`
	DateJoined   time.Time `gorm:"not null"`
}

func (u *User) TableName() string {
	return "users"
}

// Normalize validates the identity fields of a new user.
func (u *User) Normalize() error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if u.Username == "" {
		return Validation("username is required")
	}
	if len(u.Username) > 150 {
		return Validation("username must be at most 150 characters")
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return Validation("email is not a valid address")
	}
	return nil
}

// UserRole records a single role membership.
type UserRole struct {
	UserID uint  `gorm:"primaryKey"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role   Role  `gorm:"primaryKey;size:64"`
}

func (r *UserRole) TableName() string {
	return "user_roles"
}

// Token is an opaque bearer credential; one per user.
type Token struct {
	Key     string    `gorm:"primaryKey;size:40"`
	UserID  uint      `gorm:"uniqueIndex;not null"`
	User    *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Created time.Time `gorm:"not null"`
}

func (t *Token) TableName() string {
	return "tokens"
}
