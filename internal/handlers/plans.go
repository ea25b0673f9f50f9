package handlers

import (
	"datasub/internal/services/plans"
	"datasub/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PlanHandler struct {
	planService plans.Service
}

func NewPlanHandler(planService plans.Service) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// List returns the user-facing catalog: enabled plans with selling prices.
func (h *PlanHandler) List(c *fiber.Ctx) error {
	catalog, err := h.planService.Catalog(c.Context(), false)
	if err != nil {
		return response.Error(c, fiber.StatusBadGateway, "Could not load the data plan catalog")
	}
	return response.Success(c, "Plans retrieved", catalog)
}
