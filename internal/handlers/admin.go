package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"datasub/internal/models"
	"datasub/internal/repositories"
	"datasub/internal/services/audit"
	"datasub/internal/services/ledger"
	"datasub/internal/services/plans"
	"datasub/internal/utils"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler hosts the admin console endpoints. Every mutating action
// writes an AdminActivityLog entry.
type AdminHandler struct {
	userRepo      repositories.UserRepository
	txRepo        repositories.TransactionRepository
	ledgerService ledger.Service
	auditService  audit.Service
	planService   plans.Service
}

func NewAdminHandler(
	userRepo repositories.UserRepository,
	txRepo repositories.TransactionRepository,
	ledgerService ledger.Service,
	auditService audit.Service,
	planService plans.Service,
) *AdminHandler {
	return &AdminHandler{
		userRepo:      userRepo,
		txRepo:        txRepo,
		ledgerService: ledgerService,
		auditService:  auditService,
		planService:   planService,
	}
}

func adminClaims(c *fiber.Ctx) *models.UserClaims {
	return c.Locals("claims").(*models.UserClaims)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	offset, limit := utils.Pagination(c)
	users, total, err := h.userRepo.List(c.Query("search"), offset, limit)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Users retrieved", fiber.Map{
		"users": users,
		"total": total,
	})
}

func (h *AdminHandler) SetUserBan(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	var input struct {
		Banned bool   `json:"banned"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	if err := h.userRepo.SetBanned(uint(userID), input.Banned, input.Reason); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, err.Error())
	}

	claims := adminClaims(c)
	action := models.AuditActionUserBanned
	if !input.Banned {
		action = models.AuditActionUserUnbanned
	}
	h.auditService.Log(c.Context(), claims.UserID, action, "users",
		fmt.Sprintf("%d", userID), models.JSON{"reason": input.Reason})

	return response.Success(c, "User updated", nil)
}

// AdjustWallet manually credits or debits a user's wallet through the
// ledger primitives.
func (h *AdminHandler) AdjustWallet(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}
	var input struct {
		Amount float64 `json:"amount"` // positive credits, negative debits
		Reason string  `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil || input.Amount == 0 {
		return response.BadRequest(c, "amount and reason are required")
	}

	if input.Amount > 0 {
		err = h.ledgerService.Increment(c.Context(), uint(userID), input.Amount)
	} else {
		err = h.ledgerService.Deduct(c.Context(), uint(userID), -input.Amount)
	}
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return response.ValidationError(c, "User balance is lower than the debit amount")
		case errors.Is(err, ledger.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.ServerError(c, err.Error())
		}
	}

	claims := adminClaims(c)
	h.auditService.Log(c.Context(), claims.UserID, models.AuditActionWalletAdjusted, "users",
		fmt.Sprintf("%d", userID), models.JSON{
			"amount": input.Amount,
			"reason": input.Reason,
		})

	balance, err := h.ledgerService.Balance(c.Context(), uint(userID))
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Wallet adjusted", fiber.Map{"balance": balance})
}

func (h *AdminHandler) ListTransactions(c *fiber.Ctx) error {
	offset, limit := utils.Pagination(c)
	userID, _ := strconv.ParseUint(c.Query("user_id", "0"), 10, 32)

	txs, total, err := h.txRepo.List(repositories.TransactionFilter{
		UserID: uint(userID),
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Transactions retrieved", fiber.Map{
		"transactions": txs,
		"total":        total,
	})
}

// ListDisputes is the admin dispute queue: everything disputed or parked
// under review.
func (h *AdminHandler) ListDisputes(c *fiber.Ctx) error {
	offset, limit := utils.Pagination(c)
	txs, total, err := h.txRepo.List(repositories.TransactionFilter{
		Statuses: []string{models.StatusDisputed, models.StatusUnderReview},
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Disputes retrieved", fiber.Map{
		"disputes": txs,
		"total":    total,
	})
}

func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	offset, limit := utils.Pagination(c)
	adminID, _ := strconv.ParseUint(c.Query("admin_id", "0"), 10, 32)

	entries, total, err := h.auditService.List(c.Context(), repositories.AuditLogFilter{
		AdminID: uint(adminID),
		Action:  c.Query("action"),
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Audit logs retrieved", fiber.Map{
		"logs":  entries,
		"total": total,
	})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	userCount, err := h.userRepo.Count()
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	statusCounts, err := h.txRepo.CountByStatus()
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	purchaseVolume, err := h.txRepo.SumAmountByTypeAndStatus(models.TransactionTypeDataPurchase, models.StatusCompleted)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	fundingVolume, err := h.txRepo.SumAmountByTypeAndStatus(models.TransactionTypeWalletFunding, models.StatusCompleted)
	if err != nil {
		return response.ServerError(c, err.Error())
	}

	return response.Success(c, "Stats retrieved", fiber.Map{
		"users":           userCount,
		"transactions":    statusCounts,
		"purchase_volume": purchaseVolume,
		"funding_volume":  fundingVolume,
		"open_disputes":   statusCounts[models.StatusDisputed] + statusCounts[models.StatusUnderReview],
	})
}

// AdminPlans returns the full catalog including disabled plans and cost
// prices.
func (h *AdminHandler) AdminPlans(c *fiber.Ctx) error {
	catalog, err := h.planService.Catalog(c.Context(), true)
	if err != nil {
		return response.Error(c, fiber.StatusBadGateway, err.Error())
	}
	return response.Success(c, "Plans retrieved", catalog)
}

func (h *AdminHandler) SavePlanOverride(c *fiber.Ctx) error {
	var input struct {
		VendorPlanID int     `json:"vendor_plan_id"`
		Markup       float64 `json:"markup"`
		Enabled      bool    `json:"enabled"`
	}
	if err := c.BodyParser(&input); err != nil || input.VendorPlanID == 0 {
		return response.BadRequest(c, "vendor_plan_id is required")
	}

	claims := adminClaims(c)
	override, err := h.planService.SaveOverride(c.Context(), claims.UserID, input.VendorPlanID, input.Markup, input.Enabled)
	if err != nil {
		if errors.Is(err, plans.ErrInvalidMarkup) {
			return response.ValidationError(c, err.Error())
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Plan override saved", override)
}
