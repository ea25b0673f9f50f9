package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Email               string    `gorm:"uniqueIndex;not null" json:"email"`
	Password            string    `gorm:"not null" json:"-"`
	Name                string    `gorm:"not null" json:"name"`
	Phone               string    `gorm:"uniqueIndex;not null" json:"phone"`
	Role                string    `gorm:"default:'user'" json:"role"`
	WalletBalance       float64   `gorm:"not null;default:0" json:"wallet_balance"`
	Banned              bool      `gorm:"default:false" json:"banned"`
	BanReason           string    `json:"ban_reason,omitempty"`
	TokenVersion        int       `gorm:"default:1" json:"-"`
	LastLoginAt         time.Time `json:"last_login_at"`
	LastLoginIP         string    `json:"-"`
	FailedLoginAttempts int       `gorm:"default:0" json:"-"`
}
