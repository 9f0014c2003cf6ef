package models

import (
	"time"

	"gorm.io/gorm"
)

// Role describes a user's permission tier. The hierarchy is
// owner > admin > user; the single-owner expectation is a business rule
// and is deliberately not enforced at the storage level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// Privileged reports whether r carries moderation rights.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleOwner
}

// User represents a journal account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash      string     `gorm:"size:255;not null" json:"-"`
	DisplayName       *string    `gorm:"size:64;uniqueIndex" json:"display_name"`
	Role              Role       `gorm:"size:16;not null;default:'user'" json:"role"`
	PasswordChangedAt *time.Time `json:"password_changed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps and a sane role are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if !u.Role.Valid() {
		u.Role = RoleUser
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
