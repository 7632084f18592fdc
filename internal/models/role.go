package models

import (
	"time"

	"gorm.io/gorm"
)

// Built-in role names.
const (
	RoleAnonymous     = "anonymous"
	RoleAuthenticated = "authenticated"
	RoleAdministrator = "administrator"
)

// Role is a named set of permissions granted to users.
type Role struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Weight      int            `json:"weight"`
	IsAdmin     bool           `json:"is_admin"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
