// Package funding implements the two-phase wallet funding flow: a pending
// WalletFunding reserves the gateway handshake, and settlement (webhook,
// manual verification, or a synchronous card charge) credits the wallet
// exactly once regardless of how many settlement attempts race.
package funding

import (
	"context"
	"errors"
	"fmt"
	"log"

	"datasub/internal/metrics"
	"datasub/internal/models"
	"datasub/internal/repositories"
	"datasub/internal/services/gateway"

	"github.com/google/uuid"
)

const minFundingAmount = 100 // naira

type service struct {
	repo        repositories.WalletFundingRepository
	gateway     GatewayClient
	charger     CardCharger // nil disables the card channel
	callbackURL string
}

func NewService(repo repositories.WalletFundingRepository, gw GatewayClient, charger CardCharger, callbackURL string) Service {
	if repo == nil {
		panic("funding repository is required")
	}
	if gw == nil {
		panic("gateway client is required")
	}
	return &service{repo: repo, gateway: gw, charger: charger, callbackURL: callbackURL}
}

func (s *service) Initialize(ctx context.Context, user *models.User, amount float64) (*InitializeResult, error) {
	if amount < minFundingAmount {
		return nil, ErrInvalidAmount
	}

	funding := &models.WalletFunding{
		UserID:           user.ID,
		Amount:           amount,
		PaymentMethod:    models.PaymentMethodPaystack,
		Status:           models.FundingStatusPending,
		PaymentReference: newReference(),
	}
	if err := s.repo.Create(funding); err != nil {
		return nil, fmt.Errorf("failed to create funding record: %w", err)
	}

	init, err := s.gateway.InitializeTransaction(ctx, user.Email, amount, funding.PaymentReference, s.callbackURL)
	if err != nil {
		// The reserved attempt is dead; close it so it can't settle later.
		if _, failErr := s.SettleFailure(ctx, funding.PaymentReference, "gateway initialization failed"); failErr != nil {
			log.Printf("funding: failed to close dead funding %s: %v", funding.PaymentReference, failErr)
		}
		return nil, err
	}

	return &InitializeResult{
		Reference:        funding.PaymentReference,
		AuthorizationURL: init.AuthorizationURL,
		Amount:           amount,
	}, nil
}

func (s *service) FundWithCard(ctx context.Context, user *models.User, amount float64, cardToken string) (Outcome, error) {
	if amount < minFundingAmount {
		return "", ErrInvalidAmount
	}
	if s.charger == nil {
		return "", ErrCardChannelDisabled
	}

	funding := &models.WalletFunding{
		UserID:           user.ID,
		Amount:           amount,
		PaymentMethod:    models.PaymentMethodCard,
		Status:           models.FundingStatusPending,
		PaymentReference: newReference(),
	}
	if err := s.repo.Create(funding); err != nil {
		return "", fmt.Errorf("failed to create funding record: %w", err)
	}

	chargeID, err := s.charger.ChargeCard(cardToken, amount, funding.PaymentReference,
		fmt.Sprintf("wallet funding for %s", user.Email))
	if err != nil {
		if _, failErr := s.SettleFailure(ctx, funding.PaymentReference, err.Error()); failErr != nil {
			log.Printf("funding: failed to mark card funding %s failed: %v", funding.PaymentReference, failErr)
		}
		return OutcomeMarkedFailed, err
	}

	return s.SettleSuccess(ctx, funding.PaymentReference, "stripe charge "+chargeID)
}

func (s *service) Verify(ctx context.Context, reference string) (Outcome, error) {
	result, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		if errors.Is(err, gateway.ErrReferenceNotFound) {
			return "", ErrFundingNotFound
		}
		return "", err
	}

	switch result.Status {
	case gateway.StatusSuccess:
		return s.SettleSuccess(ctx, reference, result.GatewayResponse)
	case gateway.StatusFailed, gateway.StatusAbandoned:
		return s.SettleFailure(ctx, reference, result.GatewayResponse)
	case gateway.StatusPending:
		return OutcomePending, nil
	default:
		// Fail-safe default: log and surface without mutating anything.
		log.Printf("funding: unrecognized gateway status %q for reference %s", result.Status, reference)
		return "", ErrUnknownGatewayStatus
	}
}

// SettleSuccess applies a confirmed payment. The funding flip, the
// transaction insert and the wallet credit are one database transaction, so
// a funding row can never claim completed without its credited transaction
// committing alongside it. Idempotency comes from two independent guards:
// the conditional update (only one caller flips pending) and the unique
// payment reference on the transaction insert.
func (s *service) SettleSuccess(ctx context.Context, reference, gatewayResponse string) (Outcome, error) {
	funding, err := s.repo.GetByReference(reference)
	if err != nil {
		return "", ErrFundingNotFound
	}

	outcome := OutcomeAlreadyProcessed
	err = s.repo.InSettlement(func(ops repositories.SettlementOps) error {
		flipped, err := ops.CompleteIfPending(reference, gatewayResponse)
		if err != nil {
			return err
		}
		if !flipped {
			// Another settlement already moved this funding out of
			// pending. Not an error.
			return nil
		}

		exists, err := ops.TransactionExistsByReference(reference)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		ref := reference
		tx := &models.Transaction{
			UserID:           funding.UserID,
			Type:             models.TransactionTypeWalletFunding,
			Amount:           funding.Amount,
			Status:           models.StatusCompleted,
			PaymentReference: &ref,
			PaymentMethod:    funding.PaymentMethod,
			FundingID:        &funding.ID,
		}
		if err := ops.CreateTransaction(tx); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return nil
			}
			return err
		}

		// Credit only after a new transaction row was actually inserted.
		if err := ops.CreditWallet(funding.UserID, funding.Amount); err != nil {
			return err
		}
		outcome = OutcomeCredited
		return nil
	})
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("settlement failed for %s: %w", reference, err)
	}

	metrics.SettlementsTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == OutcomeCredited {
		log.Printf("funding: credited %.2f to user %d (reference %s)", funding.Amount, funding.UserID, reference)
	}
	return outcome, nil
}

func (s *service) SettleFailure(ctx context.Context, reference, gatewayResponse string) (Outcome, error) {
	if _, err := s.repo.GetByReference(reference); err != nil {
		return "", ErrFundingNotFound
	}

	outcome := OutcomeAlreadyProcessed
	err := s.repo.InSettlement(func(ops repositories.SettlementOps) error {
		flipped, err := ops.FailIfPending(reference, gatewayResponse)
		if err != nil {
			return err
		}
		if flipped {
			outcome = OutcomeMarkedFailed
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to mark funding %s failed: %w", reference, err)
	}

	metrics.SettlementsTotal.WithLabelValues(string(outcome)).Inc()
	log.Printf("funding: reference %s closed as failed: %s", reference, gatewayResponse)
	return outcome, nil
}

func newReference() string {
	return "FND-" + uuid.NewString()
}
