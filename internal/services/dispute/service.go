// Package dispute implements dispute filing and admin resolution. The
// resolution write path mirrors the settlement idempotency pattern: the
// compensating credit and the conditional status update share one database
// transaction, so two admins racing on the same dispute produce exactly one
// refund.
package dispute

import (
	"context"
	"fmt"
	"time"

	"datasub/internal/metrics"
	"datasub/internal/models"
	"datasub/internal/repositories"
)

// Store is the transaction persistence the dispute flow needs.
type Store interface {
	GetByID(id uint) (*models.Transaction, error)
	InResolution(fn func(ops repositories.ResolutionOps) error) error
}

// Auditor records admin actions without failing the caller.
type Auditor interface {
	Log(ctx context.Context, adminID uint, action, targetTable, targetID string, details models.JSON)
}

// ResolveInput is an admin's resolution decision. Exactly one outcome is
// selected by the combination of Refund and MarkUnderReview.
type ResolveInput struct {
	TransactionID   uint
	Refund          bool
	Note            string
	RefundAmount    *float64 // nil means full amount
	MarkUnderReview bool
}

// Service handles the dispute lifecycle.
type Service interface {
	File(ctx context.Context, userID, transactionID uint, disputeType, note string) (*models.Transaction, error)
	Resolve(ctx context.Context, adminID uint, input ResolveInput) (*models.Transaction, error)
}

type service struct {
	store   Store
	auditor Auditor
}

func NewService(store Store, auditor Auditor) Service {
	if store == nil {
		panic("store is required")
	}
	if auditor == nil {
		panic("auditor is required")
	}
	return &service{store: store, auditor: auditor}
}

var validDisputeTypes = map[string]bool{
	models.DisputeTypeNotDelivered: true,
	models.DisputeTypeWrongAmount:  true,
	models.DisputeTypeDoubleCharge: true,
	models.DisputeTypeOther:        true,
}

func (s *service) File(ctx context.Context, userID, transactionID uint, disputeType, note string) (*models.Transaction, error) {
	if !validDisputeTypes[disputeType] {
		return nil, ErrInvalidDisputeType
	}

	tx, err := s.store.GetByID(transactionID)
	if err != nil {
		return nil, ErrTransactionNotFound
	}
	if tx.UserID != userID {
		return nil, ErrNotOwner
	}
	switch tx.Status {
	case models.StatusDisputed, models.StatusUnderReview:
		return nil, ErrAlreadyDisputed
	case models.StatusCompleted:
		// disputable
	default:
		return nil, ErrNotDisputable
	}

	// Conditional update: a concurrent filing or resolution loses cleanly.
	err = s.store.InResolution(func(ops repositories.ResolutionOps) error {
		updated, err := ops.UpdateStatusIfIn(tx.ID, []string{models.StatusCompleted}, map[string]interface{}{
			"status":       models.StatusDisputed,
			"dispute_type": disputeType,
			"dispute_note": note,
		})
		if err != nil {
			return err
		}
		if !updated {
			return ErrAlreadyDisputed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tx.Status = models.StatusDisputed
	tx.DisputeType = disputeType
	tx.DisputeNote = note
	return tx, nil
}

func (s *service) Resolve(ctx context.Context, adminID uint, input ResolveInput) (*models.Transaction, error) {
	tx, err := s.store.GetByID(input.TransactionID)
	if err != nil {
		return nil, ErrTransactionNotFound
	}

	switch tx.Status {
	case models.StatusDisputed, models.StatusUnderReview:
		// resolvable
	case models.StatusRefunded, models.StatusDisputeRejected:
		return nil, ErrAlreadyResolved
	default:
		return nil, ErrNothingToResolve
	}

	refundAmount, fields, newStatus, action, err := s.planResolution(tx, adminID, input)
	if err != nil {
		return nil, err
	}
	previousStatus := tx.Status

	err = s.store.InResolution(func(ops repositories.ResolutionOps) error {
		// Refund before the status flip: a transaction must never read
		// refunded without the ledger credit having succeeded. Both sit in
		// the same database transaction, so losing the conditional update
		// also rolls the credit back.
		if refundAmount > 0 {
			if err := ops.CreditWallet(tx.UserID, refundAmount); err != nil {
				return fmt.Errorf("refund credit failed: %w", err)
			}
		}
		updated, err := ops.UpdateStatusIfIn(tx.ID,
			[]string{models.StatusDisputed, models.StatusUnderReview}, fields)
		if err != nil {
			return err
		}
		if !updated {
			return ErrAlreadyResolved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refundAmount > 0 {
		metrics.RefundsTotal.WithLabelValues("dispute").Inc()
	}
	metrics.DisputesResolvedTotal.WithLabelValues(newStatus).Inc()

	details := models.JSON{
		"previous_status": previousStatus,
		"new_status":      newStatus,
		"note":            input.Note,
	}
	if refundAmount > 0 {
		details["refunded_amount"] = refundAmount
	}
	s.auditor.Log(ctx, adminID, action, "transactions", fmt.Sprintf("%d", tx.ID), details)

	tx.Status = newStatus
	return tx, nil
}

// planResolution validates the decision and produces the update fields.
// Validation failures happen here, before any ledger call.
func (s *service) planResolution(tx *models.Transaction, adminID uint, input ResolveInput) (float64, map[string]interface{}, string, string, error) {
	now := time.Now()

	if input.MarkUnderReview {
		// The case stays open; resolution fields are cleared.
		fields := map[string]interface{}{
			"status":           models.StatusUnderReview,
			"admin_resolution": "",
			"resolved_by":      nil,
			"resolved_at":      nil,
		}
		return 0, fields, models.StatusUnderReview, models.AuditActionDisputeUnderReview, nil
	}

	if !input.Refund {
		fields := map[string]interface{}{
			"status":           models.StatusDisputeRejected,
			"admin_resolution": input.Note,
			"resolved_by":      adminID,
			"resolved_at":      now,
		}
		return 0, fields, models.StatusDisputeRejected, models.AuditActionDisputeRejected, nil
	}

	refundAmount := tx.Amount
	if input.RefundAmount != nil {
		refundAmount = *input.RefundAmount
	}
	switch tx.Type {
	case models.TransactionTypeDataPurchase:
		if refundAmount != tx.Amount {
			return 0, nil, "", "", ErrPartialNotAllowed
		}
	case models.TransactionTypeWalletFunding:
		if refundAmount <= 0 || refundAmount > tx.Amount {
			return 0, nil, "", "", ErrRefundExceedsAmount
		}
	}

	fields := map[string]interface{}{
		"status":           models.StatusRefunded,
		"admin_resolution": input.Note,
		"resolved_by":      adminID,
		"resolved_at":      now,
	}
	return refundAmount, fields, models.StatusRefunded, models.AuditActionDisputeRefunded, nil
}
