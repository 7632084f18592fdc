package models

import (
	"time"

	"gorm.io/gorm"
)

// AnonymousUserID is the account id of unauthenticated visitors. It never
// has a users row.
const AnonymousUserID uint = 0

// User represents a system user
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// AnonymousUser returns the account used for unauthenticated requests.
func AnonymousUser() *User {
	return &User{ID: AnonymousUserID, Username: "Anonymous"}
}

// IsAnonymous reports whether u is the anonymous account.
func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == AnonymousUserID
}

// DisplayName returns the name shown for the account in listings.
func (u *User) DisplayName() string {
	if u == nil {
		return "Anonymous"
	}
	return u.Username
}
