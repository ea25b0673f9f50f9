package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// VendorBaseURL is the data vendor API root.
func VendorBaseURL() string {
	return GetEnv("VENDOR_BASE_URL", "https://datastationapi.com")
}

// VendorToken returns the data vendor API token. Empty means not configured;
// callers must treat that as a configuration error before any state change.
func VendorToken() string {
	return os.Getenv("VENDOR_API_TOKEN")
}

// PaystackSecretKey returns the payment gateway secret key. The same key
// authenticates API calls and signs inbound webhook payloads.
func PaystackSecretKey() string {
	return os.Getenv("PAYSTACK_SECRET_KEY")
}

// PaystackBaseURL is the payment gateway API root.
func PaystackBaseURL() string {
	return GetEnv("PAYSTACK_BASE_URL", "https://api.paystack.co")
}

// StripeSecretKey returns the Stripe secret key for the card funding channel.
func StripeSecretKey() string {
	return os.Getenv("STRIPE_SECRET_KEY")
}
