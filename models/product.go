package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product status constants
const (
	ProductStatusDraft    = "draft"
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusRejected = "rejected"
)

type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Slug          string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	SKU           string          `json:"sku"`
	VendorID      uint            `gorm:"not null" json:"vendor_id"`
	Vendor        User            `json:"-" gorm:"foreignKey:VendorID"`
	CategoryID    uint            `json:"category_id"`
	Category      Category        `json:"-" gorm:"foreignKey:CategoryID"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	Status        string          `gorm:"not null;default:draft" json:"status"`
	Approved      bool            `gorm:"default:false" json:"approved"`
	ApprovedBy    uint            `json:"approved_by,omitempty"`
	Featured      bool            `gorm:"default:false" json:"featured"`
	Rating        decimal.Decimal `gorm:"type:numeric(3,2);default:0" json:"rating"`
	ReviewCount   int             `gorm:"default:0" json:"review_count"`
	Views         int             `gorm:"default:0" json:"views"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProductID  uint      `gorm:"not null" json:"product_id"`
	CustomerID uint      `gorm:"not null" json:"customer_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Title      string    `json:"title"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
