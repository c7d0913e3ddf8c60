package handlers

import (
	"errors"

	"campuspay/internal/repositories"
	"campuspay/internal/services/topup"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TopUpHandler struct {
	topUpService topup.Service
}

func NewTopUpHandler(topUpService topup.Service) *TopUpHandler {
	return &TopUpHandler{topUpService: topUpService}
}

func (h *TopUpHandler) CreateOrder(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		WalletID uint  `json:"wallet_id" validate:"required"`
		Amount   int64 `json:"amount" validate:"required,gt=0"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	order, err := h.topUpService.CreateOrder(c.Context(), input.WalletID, input.Amount, claims.Email)
	if err != nil {
		switch {
		case errors.Is(err, topup.ErrInvalidAmount):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, repositories.ErrWalletNotFound):
			return utils.NotFound(c, "wallet not found")
		case errors.Is(err, topup.ErrChargeFailed):
			return utils.InternalError(c, "Failed to create payment charge")
		default:
			return utils.InternalError(c, "Failed to create top-up order")
		}
	}
	return utils.Created(c, fiber.Map{"order": order})
}

// Notification receives the Midtrans webhook. It always answers 200 for
// resolvable payloads so the gateway stops retrying.
func (h *TopUpHandler) Notification(c *fiber.Ctx) error {
	var n topup.Notification
	if err := c.BodyParser(&n); err != nil {
		return utils.BadRequest(c, "Invalid notification payload")
	}
	if n.OrderID == "" {
		return utils.BadRequest(c, "missing order_id")
	}

	if err := h.topUpService.HandleNotification(c.Context(), n); err != nil {
		if errors.Is(err, topup.ErrOrderNotFound) {
			return utils.NotFound(c, "order not found")
		}
		return utils.InternalError(c, "Failed to process notification")
	}
	return utils.Success(c, fiber.Map{"message": "ok"})
}
