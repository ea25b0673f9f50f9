package handlers

import (
	"errors"
	"strconv"

	"datasub/internal/models"
	"datasub/internal/services/dispute"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DisputeHandler struct {
	disputeService dispute.Service
}

func NewDisputeHandler(disputeService dispute.Service) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// File lets a user dispute their own completed transaction.
func (h *DisputeHandler) File(c *fiber.Ctx) error {
	var input struct {
		TransactionID uint   `json:"transaction_id"`
		DisputeType   string `json:"dispute_type"`
		Note          string `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	claims := c.Locals("claims").(*models.UserClaims)
	tx, err := h.disputeService.File(c.Context(), claims.UserID, input.TransactionID, input.DisputeType, input.Note)
	if err != nil {
		switch {
		case errors.Is(err, dispute.ErrTransactionNotFound):
			return response.NotFound(c, "Transaction not found")
		case errors.Is(err, dispute.ErrNotOwner):
			return response.Forbidden(c, "You can only dispute your own transactions")
		case errors.Is(err, dispute.ErrInvalidDisputeType):
			return response.ValidationError(c, "Invalid dispute type")
		case errors.Is(err, dispute.ErrAlreadyDisputed):
			return response.Conflict(c, "A dispute is already open for this transaction")
		case errors.Is(err, dispute.ErrNotDisputable):
			return response.ValidationError(c, "Only completed transactions can be disputed")
		default:
			return response.ServerError(c, "Could not file the dispute")
		}
	}
	return response.Success(c, "Dispute filed successfully", tx)
}

// Resolve applies an admin's decision to a disputed transaction.
func (h *DisputeHandler) Resolve(c *fiber.Ctx) error {
	txID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	var input struct {
		Refund          bool     `json:"refund"`
		Note            string   `json:"note"`
		RefundAmount    *float64 `json:"refund_amount"`
		MarkUnderReview bool     `json:"mark_under_review"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	claims := c.Locals("claims").(*models.UserClaims)
	tx, err := h.disputeService.Resolve(c.Context(), claims.UserID, dispute.ResolveInput{
		TransactionID:   uint(txID),
		Refund:          input.Refund,
		Note:            input.Note,
		RefundAmount:    input.RefundAmount,
		MarkUnderReview: input.MarkUnderReview,
	})
	if err != nil {
		switch {
		case errors.Is(err, dispute.ErrTransactionNotFound):
			return response.NotFound(c, "Transaction not found")
		case errors.Is(err, dispute.ErrAlreadyResolved):
			return response.Conflict(c, "This dispute has already been resolved")
		case errors.Is(err, dispute.ErrNothingToResolve):
			return response.ValidationError(c, "Transaction is not under dispute")
		case errors.Is(err, dispute.ErrRefundExceedsAmount):
			return response.ValidationError(c, "Refund amount exceeds the transaction amount")
		case errors.Is(err, dispute.ErrPartialNotAllowed):
			return response.ValidationError(c, "Data purchase refunds are all-or-nothing")
		default:
			// Admin-facing flow; the raw error is acceptable here.
			return response.ServerError(c, err.Error())
		}
	}
	return response.Success(c, "Dispute resolved", tx)
}
