package handlers

import (
	"campuspay/internal/services/aggregation"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ReportsHandler struct {
	aggregationService aggregation.Service
}

func NewReportsHandler(aggregationService aggregation.Service) *ReportsHandler {
	return &ReportsHandler{aggregationService: aggregationService}
}

func (h *ReportsHandler) Totals(c *fiber.Ctx) error {
	totals, err := h.aggregationService.Totals(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to compute balance totals")
	}
	return utils.Success(c, fiber.Map{"totals": totals})
}
