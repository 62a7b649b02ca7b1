package models

import (
	"time"
)

// User roles
const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	DisplayName string    `json:"display_name"`
	Role        string    `gorm:"not null;default:customer" json:"role"`
	Phone       string    `json:"phone"`
	Approved    bool      `gorm:"default:false" json:"approved"`
	// Vendor-specific fields
	StoreName        string `json:"store_name,omitempty"`
	StoreDescription string `json:"store_description,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
}
