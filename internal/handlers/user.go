package handlers

import (
	"datasub/internal/models"
	"datasub/internal/services/user"
	"datasub/internal/utils"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	profile, err := h.userService.Profile(c.Context(), claims.UserID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, "Profile retrieved", profile)
}

func (h *UserHandler) GetWallet(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	profile, err := h.userService.Profile(c.Context(), claims.UserID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, "Wallet retrieved", fiber.Map{
		"balance": profile.WalletBalance,
	})
}

func (h *UserHandler) GetTransactions(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	offset, limit := utils.Pagination(c)

	txs, total, err := h.userService.Transactions(c.Context(), claims.UserID, offset, limit)
	if err != nil {
		return response.ServerError(c, "Failed to load transactions")
	}
	return response.Success(c, "Transactions retrieved", fiber.Map{
		"transactions": txs,
		"total":        total,
	})
}

func (h *UserHandler) GetFundings(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	offset, limit := utils.Pagination(c)

	fundings, total, err := h.userService.Fundings(c.Context(), claims.UserID, offset, limit)
	if err != nil {
		return response.ServerError(c, "Failed to load funding history")
	}
	return response.Success(c, "Funding history retrieved", fiber.Map{
		"fundings": fundings,
		"total":    total,
	})
}
