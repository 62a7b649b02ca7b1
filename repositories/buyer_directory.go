package repositories

import (
	"context"

	"github.com/nivedh-m/VendorSphere/models"
	"github.com/nivedh-m/VendorSphere/payments"
	"gorm.io/gorm"
)

// GormBuyerDirectory implements payments.BuyerDirectory against the users
// table. Read-only.
type GormBuyerDirectory struct {
	db *gorm.DB
}

// NewBuyerDirectory creates a buyer directory bound to the given database.
func NewBuyerDirectory(db *gorm.DB) *GormBuyerDirectory {
	return &GormBuyerDirectory{db: db}
}

func (d *GormBuyerDirectory) GetBuyer(ctx context.Context, customerID uint) (*payments.Buyer, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, customerID).Error; err != nil {
		return nil, err
	}
	name := user.DisplayName
	if name == "" {
		name = user.Username
	}
	return &payments.Buyer{
		Email: user.Email,
		Name:  name,
		Phone: user.Phone,
	}, nil
}
