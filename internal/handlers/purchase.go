package handlers

import (
	"errors"

	"datasub/internal/models"
	"datasub/internal/services/plans"
	"datasub/internal/services/purchase"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	purchaseService purchase.Service
	planService     plans.Service
}

func NewPurchaseHandler(purchaseService purchase.Service, planService plans.Service) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, planService: planService}
}

// PurchaseData buys a data bundle. The selling price and plan metadata come
// from the merged catalog, never from the client.
func (h *PurchaseHandler) PurchaseData(c *fiber.Ctx) error {
	var input struct {
		PlanID      int    `json:"plan_id"`
		PhoneNumber string `json:"phone_number"`
		Ported      bool   `json:"ported"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	claims := c.Locals("claims").(*models.UserClaims)

	plan, err := h.planService.SellingPlan(c.Context(), input.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, plans.ErrPlanNotFound):
			return response.NotFound(c, "Data plan not found")
		case errors.Is(err, plans.ErrPlanDisabled):
			return response.ValidationError(c, "The selected data plan is currently unavailable.")
		default:
			return response.ServerError(c, "Could not load the data plan")
		}
	}

	tx, err := h.purchaseService.Purchase(c.Context(), purchase.Request{
		UserID:      claims.UserID,
		NetworkCode: plan.NetworkCode,
		NetworkName: plan.NetworkName,
		PhoneNumber: input.PhoneNumber,
		PlanID:      plan.VendorPlanID,
		Amount:      plan.SellingPrice,
		DataSize:    plan.DataSize,
		Duration:    plan.Duration,
		Ported:      input.Ported,
	})
	if err != nil {
		var rejected *purchase.VendorRejectedError
		switch {
		case errors.Is(err, purchase.ErrInvalidRequest):
			return response.ValidationError(c, "Please check the phone number and plan.")
		case errors.Is(err, purchase.ErrInsufficientBalance):
			return response.ValidationError(c, "Insufficient wallet balance.")
		case errors.As(err, &rejected):
			return response.Error(c, fiber.StatusBadGateway, rejected.UserMessage)
		case errors.Is(err, purchase.ErrVendorUnavailable):
			return response.Error(c, fiber.StatusBadGateway, "Service temporarily unavailable. Your wallet has been refunded.")
		default:
			return response.ServerError(c, "Data purchase failed. Please try again or contact support.")
		}
	}

	return response.Success(c, "Data purchase successful", tx)
}
