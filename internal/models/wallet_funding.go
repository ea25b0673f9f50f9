package models

import "time"

// WalletFunding statuses
const (
	FundingStatusPending   = "pending"
	FundingStatusCompleted = "completed"
	FundingStatusFailed    = "failed"
)

// Payment methods
const (
	PaymentMethodPaystack = "paystack"
	PaymentMethodCard     = "card"
)

// WalletFunding is a funding attempt, created before the payment gateway
// handshake. Settlement (webhook or verification) transitions it
// pending -> completed|failed with a conditional update; the completed
// Transaction row links back via FundingID.
type WalletFunding struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	Amount           float64   `gorm:"not null" json:"amount"`
	PaymentMethod    string    `gorm:"not null" json:"payment_method"`
	Status           string    `gorm:"not null;default:'pending';index" json:"status"`
	PaymentReference string    `gorm:"uniqueIndex;not null" json:"payment_reference"`
	GatewayResponse  string    `json:"gateway_response,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
