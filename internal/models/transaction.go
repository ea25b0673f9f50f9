package models

import (
	"time"
)

// Transaction types
const (
	TransactionTypeDataPurchase  = "data_purchase"
	TransactionTypeWalletFunding = "wallet_funding"
)

// Transaction statuses
const (
	StatusPending         = "pending"
	StatusCompleted       = "completed"
	StatusFailed          = "failed"
	StatusDisputed        = "disputed"
	StatusUnderReview     = "under_review"
	StatusRefunded        = "refunded"
	StatusDisputeRejected = "dispute_rejected"
)

// Dispute types
const (
	DisputeTypeNotDelivered = "not_delivered"
	DisputeTypeWrongAmount  = "wrong_amount"
	DisputeTypeDoubleCharge = "double_charge"
	DisputeTypeOther        = "other"
)

// transitions is the allowed status graph. Terminal states (refunded,
// dispute_rejected, failed) have no outgoing edges; moving out of them
// requires a manual database intervention, never application code.
var transitions = map[string][]string{
	StatusPending:     {StatusCompleted, StatusFailed},
	StatusCompleted:   {StatusDisputed},
	StatusDisputed:    {StatusRefunded, StatusDisputeRejected, StatusUnderReview},
	StatusUnderReview: {StatusRefunded, StatusDisputeRejected},
}

// CanTransition reports whether a transaction status may move from one
// status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transition is allowed.
func IsTerminalStatus(status string) bool {
	return len(transitions[status]) == 0
}

// Transaction is the central record of money movement: one row per wallet
// debit (data purchase) or credit (wallet funding). Rows are never deleted;
// disputes mutate status and resolution fields in place.
type Transaction struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	UserID              uint       `gorm:"not null;index" json:"user_id"`
	Type                string     `gorm:"not null" json:"type"`
	Amount              float64    `gorm:"not null" json:"amount"`
	Status              string     `gorm:"not null;default:'pending';index" json:"status"`
	NetworkCode         int        `json:"network_code,omitempty"`
	NetworkName         string     `json:"network_name,omitempty"`
	PhoneNumber         string     `json:"phone_number,omitempty"`
	DataSize            string     `json:"data_size,omitempty"`
	Duration            string     `json:"duration,omitempty"`
	VendorTransactionID *string    `gorm:"uniqueIndex" json:"vendor_transaction_id,omitempty"`
	VendorResponse      JSON       `gorm:"type:jsonb" json:"-"`
	PaymentReference    *string    `gorm:"uniqueIndex" json:"payment_reference,omitempty"`
	PaymentMethod       string     `json:"payment_method,omitempty"`
	FundingID           *uint      `json:"funding_id,omitempty"`
	DisputeType         string     `json:"dispute_type,omitempty"`
	DisputeNote         string     `json:"dispute_note,omitempty"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	AdminResolution     string     `json:"admin_resolution,omitempty"`
	ResolvedBy          *uint      `json:"resolved_by,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
