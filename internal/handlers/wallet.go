package handlers

import (
	"errors"

	"campuspay/internal/repositories"
	"campuspay/internal/services/student"
	"campuspay/internal/services/wallet"
	"campuspay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService  wallet.Service
	studentService student.Service
}

func NewWalletHandler(walletService wallet.Service, studentService student.Service) *WalletHandler {
	return &WalletHandler{
		walletService:  walletService,
		studentService: studentService,
	}
}

func (h *WalletHandler) CreateStudent(c *fiber.Ctx) error {
	var input struct {
		Name      string `json:"name" validate:"required"`
		NIS       string `json:"nis" validate:"required"`
		ClassName string `json:"class_name"`
		Dormitory string `json:"dormitory"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	st, w, err := h.studentService.Create(c.Context(), student.CreateInput{
		Name:      input.Name,
		NIS:       input.NIS,
		ClassName: input.ClassName,
		Dormitory: input.Dormitory,
	})
	if err != nil {
		if errors.Is(err, student.ErrDuplicateStudent) {
			return utils.Conflict(c, "student already exists")
		}
		return utils.BadRequest(c, err.Error())
	}

	return utils.Created(c, fiber.Map{
		"student": st,
		"wallet":  w,
	})
}

func (h *WalletHandler) ListStudents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	students, err := h.studentService.List(c.Context(), limit, offset)
	if err != nil {
		return utils.InternalError(c, "Failed to list students")
	}
	return utils.Success(c, fiber.Map{"students": students})
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return utils.BadRequest(c, "invalid wallet id")
	}

	w, err := h.walletService.GetWallet(c.Context(), uint(walletID))
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return utils.NotFound(c, "wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetStudentWallet(c *fiber.Ctx) error {
	studentID, err := c.ParamsInt("id")
	if err != nil || studentID <= 0 {
		return utils.BadRequest(c, "invalid student id")
	}

	w, err := h.walletService.GetWalletByStudent(c.Context(), uint(studentID))
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return utils.NotFound(c, "wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}
	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return utils.BadRequest(c, "invalid wallet id")
	}

	balance, err := h.walletService.GetBalance(c.Context(), uint(walletID))
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return utils.NotFound(c, "wallet not found")
		}
		return utils.InternalError(c, "Failed to get balance")
	}
	return utils.Success(c, fiber.Map{
		"wallet_id": walletID,
		"balance":   balance,
	})
}

func (h *WalletHandler) Reconcile(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return utils.BadRequest(c, "invalid wallet id")
	}

	result, err := h.walletService.Reconcile(c.Context(), uint(walletID))
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return utils.NotFound(c, "wallet not found")
		}
		return utils.InternalError(c, "Failed to reconcile wallet")
	}
	return utils.Success(c, fiber.Map{"reconciliation": result})
}
