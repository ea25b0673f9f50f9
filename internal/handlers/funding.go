package handlers

import (
	"errors"

	"datasub/internal/models"
	"datasub/internal/services/auth"
	"datasub/internal/services/funding"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type FundingHandler struct {
	fundingService funding.Service
	authService    auth.Service
}

func NewFundingHandler(fundingService funding.Service, authService auth.Service) *FundingHandler {
	return &FundingHandler{fundingService: fundingService, authService: authService}
}

// Initialize opens a gateway payment session for wallet funding.
func (h *FundingHandler) Initialize(c *fiber.Ctx) error {
	var input struct {
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	claims := c.Locals("claims").(*models.UserClaims)
	user, err := h.authService.GetUserByID(claims.UserID)
	if err != nil {
		return response.Unauthorized(c)
	}

	result, err := h.fundingService.Initialize(c.Context(), user, input.Amount)
	if err != nil {
		if errors.Is(err, funding.ErrInvalidAmount) {
			return response.ValidationError(c, "Minimum funding amount is ₦100")
		}
		return response.Error(c, fiber.StatusBadGateway, "Could not start the payment. Please try again.")
	}
	return response.Success(c, "Funding initialized", result)
}

// FundWithCard charges a tokenized card and settles synchronously.
func (h *FundingHandler) FundWithCard(c *fiber.Ctx) error {
	var input struct {
		Amount    float64 `json:"amount"`
		CardToken string  `json:"card_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.CardToken == "" {
		return response.BadRequest(c, "amount and card_token are required")
	}

	claims := c.Locals("claims").(*models.UserClaims)
	user, err := h.authService.GetUserByID(claims.UserID)
	if err != nil {
		return response.Unauthorized(c)
	}

	outcome, err := h.fundingService.FundWithCard(c.Context(), user, input.Amount, input.CardToken)
	if err != nil {
		switch {
		case errors.Is(err, funding.ErrInvalidAmount):
			return response.ValidationError(c, "Minimum funding amount is ₦100")
		case errors.Is(err, funding.ErrCardChannelDisabled):
			return response.Error(c, fiber.StatusServiceUnavailable, "Card funding is currently unavailable")
		default:
			return response.Error(c, fiber.StatusPaymentRequired, "Card charge failed")
		}
	}
	return response.Success(c, "Wallet funded", fiber.Map{"outcome": outcome})
}

// Verify re-checks a payment reference against the gateway. Safe to call
// repeatedly and concurrently with the webhook; at most one credit results.
func (h *FundingHandler) Verify(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if reference == "" {
		return response.BadRequest(c, "reference is required")
	}

	outcome, err := h.fundingService.Verify(c.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, funding.ErrFundingNotFound):
			return response.NotFound(c, "Payment reference not found")
		case errors.Is(err, funding.ErrUnknownGatewayStatus):
			return response.Error(c, fiber.StatusBadGateway, "Payment status could not be determined")
		default:
			return response.Error(c, fiber.StatusBadGateway, "Verification failed. Please try again.")
		}
	}
	return response.Success(c, "Verification complete", fiber.Map{"outcome": outcome})
}
