package handlers

import (
	"errors"

	"campuspay/internal/repositories"
	"campuspay/internal/services/billing"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type BillingHandler struct {
	billingService billing.Service
}

func NewBillingHandler(billingService billing.Service) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) CreatePayment(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Title            string `json:"title" validate:"required"`
		AmountPerStudent int64  `json:"amount_per_student" validate:"required,gt=0"`
		WalletIDs        []uint `json:"wallet_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	payment, err := h.billingService.Create(c.Context(), billing.CreatePaymentInput{
		Title:            input.Title,
		AmountPerStudent: input.AmountPerStudent,
		WalletIDs:        input.WalletIDs,
		Actor:            claims.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidTitle), errors.Is(err, billing.ErrInvalidAmount):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, billing.ErrNoWallets):
			return utils.UnprocessableEntity(c, "no wallets to bill")
		case errors.Is(err, repositories.ErrWalletNotFound):
			return utils.NotFound(c, "wallet not found")
		default:
			return utils.InternalError(c, "Failed to create collective payment")
		}
	}
	return utils.Created(c, fiber.Map{"payment": payment})
}

func (h *BillingHandler) GetPayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid payment id")
	}

	detail, err := h.billingService.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return utils.NotFound(c, "payment not found")
		}
		return utils.InternalError(c, "Failed to get collective payment")
	}
	return utils.Success(c, detail)
}

func (h *BillingHandler) ListPayments(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	payments, err := h.billingService.List(c.Context(), limit, offset)
	if err != nil {
		return utils.InternalError(c, "Failed to list collective payments")
	}
	return utils.Success(c, fiber.Map{"payments": payments})
}

func (h *BillingHandler) RecordWithdrawal(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	withdrawal, err := h.billingService.RecordWithdrawal(c.Context(), input.Amount, input.Description, claims.Email)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidAmount) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "Failed to record withdrawal")
	}
	return utils.Created(c, fiber.Map{"withdrawal": withdrawal})
}

func (h *BillingHandler) RecordDisbursement(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		Channel     string `json:"channel" validate:"required,oneof=cash transfer"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	disbursement, err := h.billingService.RecordDisbursement(c.Context(), input.Amount, input.Channel, input.Description, claims.Email)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidAmount) || errors.Is(err, billing.ErrInvalidChannel) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "Failed to record disbursement")
	}
	return utils.Created(c, fiber.Map{"disbursement": disbursement})
}
