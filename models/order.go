package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order status constants
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status constants
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Refund status constants. A cancelled order that was already paid owes the
// buyer a compensating refund; issuing it is an external concern, this only
// tracks that one is due.
const (
	RefundStatusNone      = ""
	RefundStatusDue       = "due"
	RefundStatusCompleted = "completed"
)

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerID      uint            `json:"customer_id"`
	Customer        User            `json:"-" gorm:"foreignKey:CustomerID"`
	Status          string          `gorm:"not null;default:pending" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(10,2)" json:"subtotal"`
	Tax             decimal.Decimal `gorm:"type:numeric(10,2)" json:"tax"`
	Shipping        decimal.Decimal `gorm:"type:numeric(10,2)" json:"shipping"`
	Discount        decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount"`
	Total           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	Currency        string          `gorm:"not null;default:USD" json:"currency"`
	ShippingAddress datatypes.JSON  `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `gorm:"not null;default:pending" json:"payment_status"`
	RefundStatus    string          `json:"refund_status,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	OrderItems      []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `json:"order_id"`
	ProductID uint            `json:"product_id"`
	VendorID  uint            `json:"vendor_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `gorm:"type:numeric(10,2)" json:"total"`
}

// orderStatusTransitions is the authoritative order lifecycle. Terminal states
// have no outgoing edges.
var orderStatusTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// paymentStatusTransitions is the parallel payment dimension: paid only from
// pending, refunded only from paid, failed only from pending.
var paymentStatusTransitions = map[string][]string{
	PaymentStatusPending:  {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:     {PaymentStatusRefunded},
	PaymentStatusRefunded: {},
	PaymentStatusFailed:   {},
}

// CanTransitionOrderStatus reports whether an order may move from one status
// to another.
func CanTransitionOrderStatus(from, to string) bool {
	for _, next := range orderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPaymentStatus reports whether an order's payment status may
// move from one status to another.
func CanTransitionPaymentStatus(from, to string) bool {
	for _, next := range paymentStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidOrderStatuses lists every status an order may hold.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}
