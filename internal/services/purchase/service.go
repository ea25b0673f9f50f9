// Package purchase implements the data-purchase flow: deduct the wallet,
// record the transaction, deliver through the vendor, and compensate with a
// refund on any failure past the deduction.
package purchase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"datasub/internal/metrics"
	"datasub/internal/models"
	"datasub/internal/services/vendor"
)

type service struct {
	store  Store
	ledger Ledger
	vendor VendorClient
}

func NewService(store Store, ledger Ledger, vendorClient VendorClient) Service {
	if store == nil {
		panic("store is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	if vendorClient == nil {
		panic("vendor client is required")
	}
	return &service{store: store, ledger: ledger, vendor: vendorClient}
}

// Purchase runs the purchase saga. Failure domains, in order:
//
//  1. deduct      — nothing written yet, no compensation
//  2. record row  — deduction stands, compensate with refund
//  3. vendor call — compensate with refund, mark row failed
//  4. interpret   — same as 3 for vendor-reported failures
//
// A vendor success is the point of no return: the row is marked completed
// and no compensation is possible afterwards.
func (s *service) Purchase(ctx context.Context, req Request) (tx *models.Transaction, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Unexpected panics after the deduction still owe the user a refund.
	deducted := false
	defer func() {
		if r := recover(); r != nil {
			log.Printf("purchase panic for user %d: %v", req.UserID, r)
			if deducted {
				s.compensate(req.UserID, req.Amount, "unexpected failure")
			}
			if tx != nil {
				s.markFailed(tx.ID, "An unexpected error occurred. Your wallet has been refunded.", nil)
			}
			tx = nil
			err = fmt.Errorf("unexpected purchase failure")
		}
	}()

	// 1. Deduct. The ledger's guarded update is the balance check.
	if err := s.ledger.Deduct(ctx, req.UserID, req.Amount); err != nil {
		metrics.PurchasesTotal.WithLabelValues("insufficient_balance").Inc()
		return nil, ErrInsufficientBalance
	}
	deducted = true

	// 2. Record the pending row.
	tx = &models.Transaction{
		UserID:      req.UserID,
		Type:        models.TransactionTypeDataPurchase,
		Amount:      req.Amount,
		Status:      models.StatusPending,
		NetworkCode: req.NetworkCode,
		NetworkName: req.NetworkName,
		PhoneNumber: req.PhoneNumber,
		DataSize:    req.DataSize,
		Duration:    req.Duration,
	}
	if createErr := s.store.Create(tx); createErr != nil {
		log.Printf("purchase: failed to record transaction for user %d: %v", req.UserID, createErr)
		s.compensate(req.UserID, req.Amount, "transaction record failed")
		metrics.PurchasesTotal.WithLabelValues("persistence_failed").Inc()
		return nil, ErrPersistenceFailed
	}

	// 3. Call the vendor.
	vctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	result, vendErr := s.vendor.PurchaseData(vctx, vendor.PurchaseRequest{
		Network:      req.NetworkCode,
		MobileNumber: req.PhoneNumber,
		PlanID:       req.PlanID,
		Ported:       req.Ported,
	})
	if vendErr != nil {
		log.Printf("purchase: vendor call failed for tx %d: %v", tx.ID, vendErr)
		s.markFailed(tx.ID, "Service temporarily unavailable. Your wallet has been refunded.", nil)
		s.compensate(req.UserID, req.Amount, "vendor unavailable")
		metrics.PurchasesTotal.WithLabelValues("vendor_unavailable").Inc()
		return nil, ErrVendorUnavailable
	}

	// 4. Interpret the normalized vendor outcome.
	if !result.Success {
		userMessage := vendor.TranslateMessage(result.Message)
		log.Printf("purchase: vendor rejected tx %d: %q", tx.ID, result.Message)
		s.markFailed(tx.ID, userMessage, result.Raw)
		s.compensate(req.UserID, req.Amount, "vendor rejected")
		metrics.PurchasesTotal.WithLabelValues("vendor_rejected").Inc()
		return nil, &VendorRejectedError{UserMessage: userMessage}
	}

	// 5. Vendor success. Point of no return.
	fields := map[string]interface{}{
		"status":          models.StatusCompleted,
		"vendor_response": result.Raw,
	}
	if result.VendorTxID != "" {
		fields["vendor_transaction_id"] = result.VendorTxID
	}
	if updateErr := s.store.UpdateFields(tx.ID, fields); updateErr != nil {
		// The bundle was delivered; the money is spent. Log loudly and
		// return the transaction as completed anyway.
		log.Printf("purchase: CRITICAL: vendor delivered but status update failed for tx %d: %v", tx.ID, updateErr)
	}
	tx.Status = models.StatusCompleted
	if result.VendorTxID != "" {
		vendorID := result.VendorTxID
		tx.VendorTransactionID = &vendorID
	}
	tx.VendorResponse = result.Raw

	metrics.PurchasesTotal.WithLabelValues("completed").Inc()
	return tx, nil
}

// compensate refunds a deduction. A failed refund is the worst state this
// flow can reach, so it gets the loudest log line.
func (s *service) compensate(userID uint, amount float64, reason string) {
	if err := s.ledger.Refund(context.Background(), userID, amount); err != nil {
		log.Printf("purchase: CRITICAL: compensating refund of %.2f for user %d failed (%s): %v",
			amount, userID, reason, err)
		metrics.RefundsTotal.WithLabelValues("failed").Inc()
		return
	}
	metrics.RefundsTotal.WithLabelValues("compensation").Inc()
}

func (s *service) markFailed(txID uint, message string, raw models.JSON) {
	fields := map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": message,
	}
	if raw != nil {
		fields["vendor_response"] = raw
	}
	if err := s.store.UpdateFields(txID, fields); err != nil {
		log.Printf("purchase: failed to mark tx %d failed: %v", txID, err)
	}
}

func validateRequest(req Request) error {
	if req.UserID == 0 || req.Amount <= 0 || req.PlanID == 0 {
		return ErrInvalidRequest
	}
	digits := strings.TrimPrefix(req.PhoneNumber, "+234")
	if len(digits) != 11 && len(digits) != 10 {
		return ErrInvalidRequest
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ErrInvalidRequest
		}
	}
	return nil
}
