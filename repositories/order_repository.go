// Package repositories provides the gorm-backed implementations of the
// storage contracts the payment core depends on.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/payments"
	"gorm.io/gorm"
)

// GormOrderRepository implements payments.OrderRepository on top of gorm.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository bound to the given database.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payments.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payments.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) SetPaymentMethod(ctx context.Context, orderID uint, gateway string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_method": gateway,
			"updated_at":     time.Now(),
		}).Error
}

// UpdateStatusCAS applies the transition only while the order still holds the
// expected status. The WHERE condition is the compare-and-set: a stale or
// duplicate caller simply affects zero rows.
func (r *GormOrderRepository) UpdateStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error) {
	if !models.CanTransitionOrderStatus(expected, next) {
		return false, fmt.Errorf("invalid order status transition %s -> %s", expected, next)
	}

	updates := map[string]interface{}{
		"status":     next,
		"updated_at": time.Now(),
	}
	if next == models.OrderStatusDelivered {
		updates["completed_at"] = time.Now()
	}

	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOrderRepository) UpdatePaymentStatusCAS(ctx context.Context, orderID uint, expected, next string) (bool, error) {
	if !models.CanTransitionPaymentStatus(expected, next) {
		return false, fmt.Errorf("invalid payment status transition %s -> %s", expected, next)
	}

	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, expected).
		Updates(map[string]interface{}{
			"payment_status": next,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetRefundStatus tracks the compensating-refund bookkeeping for cancelled
// paid orders.
func (r *GormOrderRepository) SetRefundStatus(ctx context.Context, orderID uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"refund_status": status,
			"updated_at":    time.Now(),
		}).Error
}
