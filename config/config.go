package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string
	// BaseURL is the externally reachable URL of this server, used to build
	// provider webhook callback URLs.
	BaseURL string

	Stripe   StripeConfig
	PayFast  PayFastConfig
	PayToday PayTodayConfig
	DOP      DOPConfig
}

// StripeConfig holds credentials for the Stripe hosted-card gateway.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// PayFastConfig holds credentials for the PayFast redirect gateway.
type PayFastConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ProcessURL  string
	// TrustedIPs optionally restricts ITN callbacks to known PayFast hosts.
	TrustedIPs []string
}

// PayTodayConfig holds credentials for the PayToday redirect gateway.
type PayTodayConfig struct {
	APIKey    string
	SecretKey string
	BaseURL   string
}

// DOPConfig holds credentials for the Digital Online Payments gateway.
type DOPConfig struct {
	MerchantID string
	APIKey     string
	SecretKey  string
	BaseURL    string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),
		BaseURL:    os.Getenv("BASE_URL"),
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},
		PayFast: PayFastConfig{
			MerchantID:  os.Getenv("PAYFAST_MERCHANT_ID"),
			MerchantKey: os.Getenv("PAYFAST_MERCHANT_KEY"),
			Passphrase:  os.Getenv("PAYFAST_PASSPHRASE"),
			ProcessURL:  os.Getenv("PAYFAST_PROCESS_URL"),
		},
		PayToday: PayTodayConfig{
			APIKey:    os.Getenv("PAYTODAY_API_KEY"),
			SecretKey: os.Getenv("PAYTODAY_SECRET_KEY"),
			BaseURL:   os.Getenv("PAYTODAY_BASE_URL"),
		},
		DOP: DOPConfig{
			MerchantID: os.Getenv("DOP_MERCHANT_ID"),
			APIKey:     os.Getenv("DOP_API_KEY"),
			SecretKey:  os.Getenv("DOP_SECRET_KEY"),
			BaseURL:    os.Getenv("DOP_BASE_URL"),
		},
	}

	if ips := os.Getenv("PAYFAST_TRUSTED_IPS"); ips != "" {
		config.PayFast.TrustedIPs = strings.Split(ips, ",")
	}
	if config.PayFast.ProcessURL == "" {
		config.PayFast.ProcessURL = "https://sandbox.payfast.co.za/eng/process"
	}
	if config.PayToday.BaseURL == "" {
		config.PayToday.BaseURL = "https://api.sandbox.paytoday.com"
	}
	if config.DOP.BaseURL == "" {
		config.DOP.BaseURL = "https://api.sandbox.dop.com"
	}

	return config, nil
}
