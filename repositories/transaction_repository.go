package repositories

import (
	"context"
	"errors"

	"github.com/nivedh-m/VendorSphere/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionRepository implements payments.TransactionRepository on top
// of gorm.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository bound to the
// given database.
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) FindByProviderRef(ctx context.Context, provider, ref string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("provider = ? AND transaction_id = ?", provider, ref).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// InsertIfAbsent inserts the transaction with ON CONFLICT DO NOTHING on the
// (provider, transaction_id) unique index. The insert and the existence check
// are one atomic statement, which is what makes concurrent deliveries of the
// same webhook safe.
func (r *GormTransactionRepository) InsertIfAbsent(ctx context.Context, txn *models.PaymentTransaction) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "transaction_id"}},
		DoNothing: true,
	}).Create(txn)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByOrder returns the full attempt log for an order, newest first.
func (r *GormTransactionRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&txns).Error
	return txns, err
}
