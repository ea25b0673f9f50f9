package funding

import (
	"context"

	"datasub/internal/models"
	"datasub/internal/services/gateway"
)

// GatewayClient is the slice of the payment gateway the funding flow needs.
type GatewayClient interface {
	InitializeTransaction(ctx context.Context, email string, amount float64, reference, callbackURL string) (*gateway.InitResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyResult, error)
}

// CardCharger charges tokenized cards for the direct card channel.
type CardCharger interface {
	ChargeCard(token string, amount float64, reference, description string) (string, error)
}

// Outcome describes what a settlement attempt did. Redundant attempts
// (webhook and manual verification racing) are normal; exactly one of them
// reports OutcomeCredited.
type Outcome string

const (
	OutcomeCredited         Outcome = "credited"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeMarkedFailed     Outcome = "marked_failed"
	OutcomePending          Outcome = "pending"
)

// InitializeResult is handed to the client to complete payment.
type InitializeResult struct {
	Reference        string  `json:"reference"`
	AuthorizationURL string  `json:"authorization_url,omitempty"`
	Amount           float64 `json:"amount"`
}

// Service bridges the payment gateway and the wallet ledger.
type Service interface {
	// Initialize reserves a funding attempt and opens the gateway session.
	Initialize(ctx context.Context, user *models.User, amount float64) (*InitializeResult, error)
	// FundWithCard charges a Stripe card token and settles synchronously.
	FundWithCard(ctx context.Context, user *models.User, amount float64, cardToken string) (Outcome, error)
	// Verify re-checks a reference against the gateway and settles it.
	Verify(ctx context.Context, reference string) (Outcome, error)
	// SettleSuccess applies a confirmed-successful payment (webhook path).
	SettleSuccess(ctx context.Context, reference, gatewayResponse string) (Outcome, error)
	// SettleFailure records a confirmed failure or abandonment.
	SettleFailure(ctx context.Context, reference, gatewayResponse string) (Outcome, error)
}
