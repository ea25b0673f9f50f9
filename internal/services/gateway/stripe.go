package gateway

import (
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

// StripeCharger charges tokenized cards directly. Card fundings settle
// synchronously: the charge either succeeds before settlement runs or the
// funding is never marked completed.
type StripeCharger struct {
	secretKey string
}

func NewStripeCharger(secretKey string) (*StripeCharger, error) {
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}
	return &StripeCharger{secretKey: secretKey}, nil
}

// ChargeCard charges amount (naira) against a Stripe card token and returns
// the charge id. The reference is attached as metadata so gateway-side
// records can be reconciled against WalletFunding rows.
func (s *StripeCharger) ChargeCard(token string, amount float64, reference, description string) (string, error) {
	stripe.Key = s.secretKey

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(toKobo(amount)),
		Currency:    stripe.String("ngn"),
		Description: stripe.String(description),
	}
	params.AddMetadata("reference", reference)
	if err := params.SetSource(token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCardChargeFailed, err)
	}

	ch, err := charge.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCardChargeFailed, err)
	}
	if !ch.Paid {
		return "", fmt.Errorf("%w: %s", ErrCardChargeFailed, ch.FailureMessage)
	}
	return ch.ID, nil
}
