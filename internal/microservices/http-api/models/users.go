package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"popcornhour/internal/shared"
)

// MaxEmailLength matches the email column width.
const MaxEmailLength = 120

type User struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string      `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Email     string      `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password  string      `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	Role      shared.Role `gorm:"type:varchar(20);default:'standard';not null" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	LastLogin *time.Time  `json:"last_login,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = shared.RoleStandard
	}
	return
}

func (User) TableName() string {
	return "users"
}
