// Package payments contains the payment orchestrator and the webhook
// ingestor. Both mutate orders and the transaction log exclusively through
// the repository contracts below, so the order store stays the single
// serialization point between the synchronous and asynchronous paths.
package payments

import (
	"context"
	"errors"

	"github.com/nivedh-m/VendorSphere/models"
)

// ErrOrderNotFound is returned when no order matches the given reference.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the order store contract. Status updates are
// compare-and-set: they apply only when the order still holds the expected
// current value, so a duplicate or out-of-order webhook cannot regress or
// double-apply a transition.
type OrderRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	// SetPaymentMethod records the gateway selected for the order.
	SetPaymentMethod(ctx context.Context, orderID uint, gateway string) error
	// UpdateStatusCAS transitions the order status from expected to next and
	// reports whether the transition was applied.
	UpdateStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error)
	// UpdatePaymentStatusCAS transitions the payment status from expected to
	// next and reports whether the transition was applied.
	UpdatePaymentStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error)
}

// TransactionRepository is the immutable payment-attempt log contract.
type TransactionRepository interface {
	FindByProviderRef(ctx context.Context, provider, ref string) (*models.PaymentTransaction, error)
	// InsertIfAbsent atomically inserts the transaction unless a row already
	// exists for its (provider, transaction id) pair, and reports whether the
	// row was inserted. This single operation closes the race window between
	// two concurrent deliveries of the same webhook.
	InsertIfAbsent(ctx context.Context, txn *models.PaymentTransaction) (bool, error)
}

// Buyer is the contact slice of a user the payment core needs.
type Buyer struct {
	Email string
	Name  string
	Phone string
}

// BuyerDirectory supplies buyer contact details for populating payment
// requests. Read-only.
type BuyerDirectory interface {
	GetBuyer(ctx context.Context, customerID uint) (*Buyer, error)
}
