package handlers

import (
	"errors"

	"campuspay/internal/repositories"
	"campuspay/internal/services/correction"
	"campuspay/internal/services/ledger"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	ledgerService     ledger.Service
	correctionService correction.Service
}

func NewTransactionHandler(ledgerService ledger.Service, correctionService correction.Service) *TransactionHandler {
	return &TransactionHandler{
		ledgerService:     ledgerService,
		correctionService: correctionService,
	}
}

func (h *TransactionHandler) Append(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		WalletID    uint   `json:"wallet_id" validate:"required"`
		Kind        string `json:"kind" validate:"required,oneof=credit debit"`
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		Method      string `json:"method" validate:"required,oneof=cash transfer admin-void"`
		Description string `json:"description"`
		Reference   string `json:"reference" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	txn, err := h.ledgerService.Append(c.Context(), ledger.AppendInput{
		WalletID:    input.WalletID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		Method:      input.Method,
		Description: input.Description,
		Reference:   input.Reference,
		Actor:       claims.Email,
	})
	if err != nil {
		return mapLedgerError(c, err)
	}
	return utils.Created(c, fiber.Map{"transaction": txn})
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid transaction id")
	}

	txn, err := h.ledgerService.GetTransaction(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return utils.NotFound(c, "transaction not found")
		}
		return utils.InternalError(c, "Failed to get transaction")
	}
	return utils.Success(c, fiber.Map{"transaction": txn})
}

func (h *TransactionHandler) History(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return utils.BadRequest(c, "invalid wallet id")
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	txns, err := h.ledgerService.ListTransactions(c.Context(), uint(walletID), limit, offset)
	if err != nil {
		return utils.InternalError(c, "Failed to get transaction history")
	}
	return utils.Success(c, fiber.Map{"transactions": txns})
}

func (h *TransactionHandler) Void(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid transaction id")
	}

	if err := h.correctionService.Void(c.Context(), uint(id), claims.Email); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound):
			return utils.NotFound(c, "transaction not found")
		case errors.Is(err, correction.ErrAlreadyVoided):
			return utils.Conflict(c, "transaction already voided")
		case errors.Is(err, ledger.ErrInsufficientBalance):
			return utils.UnprocessableEntity(c, "voiding would overdraw the wallet")
		default:
			return utils.InternalError(c, "Failed to void transaction")
		}
	}
	return utils.Success(c, fiber.Map{"message": "transaction voided"})
}

func (h *TransactionHandler) Edit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid transaction id")
	}

	var input struct {
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		Description string `json:"description"`
		Method      string `json:"method" validate:"required,oneof=cash transfer admin-void"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	txn, err := h.correctionService.Edit(c.Context(), uint(id), correction.EditInput{
		Amount:      input.Amount,
		Description: input.Description,
		Method:      input.Method,
		Actor:       claims.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound):
			return utils.NotFound(c, "transaction not found")
		case errors.Is(err, correction.ErrAlreadyVoided):
			return utils.Conflict(c, "transaction already voided")
		default:
			return mapLedgerError(c, err)
		}
	}
	return utils.Success(c, fiber.Map{"transaction": txn})
}

func mapLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrWalletNotFound):
		return utils.NotFound(c, "wallet not found")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return utils.UnprocessableEntity(c, "insufficient balance")
	case errors.Is(err, ledger.ErrDuplicateReference):
		return utils.Conflict(c, "reference already used")
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidKind),
		errors.Is(err, ledger.ErrInvalidMethod),
		errors.Is(err, ledger.ErrMissingReference):
		return utils.BadRequest(c, err.Error())
	default:
		return utils.InternalError(c, "Failed to append transaction")
	}
}
