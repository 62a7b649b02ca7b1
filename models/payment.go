package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment transaction status constants
const (
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
	TransactionStatusPending = "pending"
)

// PaymentTransaction is an immutable record of one attempt to collect payment
// for an order. Rows are only ever inserted, never updated: a retry produces a
// new row, which preserves the audit trail. The composite unique index on
// (provider, transaction_id) is what makes webhook replay safe.
type PaymentTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null" json:"order_id"`
	Provider      string          `gorm:"not null;uniqueIndex:idx_provider_transaction" json:"provider"`
	TransactionID string          `gorm:"not null;uniqueIndex:idx_provider_transaction" json:"transaction_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `gorm:"not null" json:"status"`
	Metadata      datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
