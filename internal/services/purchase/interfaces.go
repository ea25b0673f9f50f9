package purchase

import (
	"context"

	"datasub/internal/models"
	"datasub/internal/services/vendor"
)

// Ledger is the slice of the wallet ledger the purchase flow needs.
type Ledger interface {
	Deduct(ctx context.Context, userID uint, amount float64) error
	Refund(ctx context.Context, userID uint, amount float64) error
}

// VendorClient submits orders to the data vendor.
type VendorClient interface {
	PurchaseData(ctx context.Context, req vendor.PurchaseRequest) (*vendor.PurchaseResult, error)
}

// Store is the transaction persistence the purchase flow needs.
type Store interface {
	Create(tx *models.Transaction) error
	UpdateFields(id uint, fields map[string]interface{}) error
}

// Service converts wallet balance into a vendor-delivered data bundle.
type Service interface {
	Purchase(ctx context.Context, req Request) (*models.Transaction, error)
}

// Request is one data purchase order.
type Request struct {
	UserID      uint
	NetworkCode int
	NetworkName string
	PhoneNumber string
	PlanID      int
	Amount      float64
	DataSize    string
	Duration    string
	Ported      bool
}
