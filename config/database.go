package config

import (
	"fmt"

	"github.com/nivedh-m/VendorSphere/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	// Auto-migrate the schema
	err = DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Review{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	// The (provider, transaction_id) pair is the webhook de-duplication key.
	// AutoMigrate creates it from the composite uniqueIndex tag, but older
	// databases migrated before the tag existed may miss it, so assert it here.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_provider_transaction
		ON payment_transactions (provider, transaction_id)
	`).Error
	if err != nil {
		panic(fmt.Sprintf("Failed to ensure transaction de-duplication index: %v", err))
	}
}
