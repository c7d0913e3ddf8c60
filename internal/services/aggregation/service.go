// Package aggregation computes the institution-wide cash and bank balances
// by replaying transaction method tags. It is a read-only projection over the
// ledger; voided rows are excluded unconditionally.
package aggregation

import (
	"context"
	"fmt"

	"campuspay/internal/models"
	"campuspay/internal/repositories"
)

// Totals is the institutional balance projection. A completed bank-to-cash
// withdrawal is added to the cash pool and subtracted from the bank pool, so
// it moves value between pools without changing Total.
type Totals struct {
	Cash  int64 `json:"cash"`
	Bank  int64 `json:"bank"`
	Total int64 `json:"total"`
}

type Service interface {
	Totals(ctx context.Context) (*Totals, error)
}

type service struct {
	repo repositories.LedgerRepository
}

func NewService(repo repositories.LedgerRepository) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{repo: repo}
}

func (s *service) Totals(ctx context.Context) (*Totals, error) {
	cashCredits, err := s.repo.SumAmountByMethod(models.KindCredit, models.MethodCash)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cash credits: %w", err)
	}
	cashDebits, err := s.repo.SumAmountByMethod(models.KindDebit, models.MethodCash)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cash debits: %w", err)
	}
	bankCredits, err := s.repo.SumAmountByMethod(models.KindCredit, models.MethodTransfer)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bank credits: %w", err)
	}
	bankDebits, err := s.repo.SumAmountByMethod(models.KindDebit, models.MethodTransfer)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bank debits: %w", err)
	}

	withdrawals, err := s.repo.SumWithdrawals(models.WithdrawalStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	cashDisbursed, err := s.repo.SumDisbursements(models.DisbursementStatusApproved, models.ChannelCash)
	if err != nil {
		return nil, fmt.Errorf("failed to sum cash disbursements: %w", err)
	}
	bankDisbursed, err := s.repo.SumDisbursements(models.DisbursementStatusApproved, models.ChannelTransfer)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bank disbursements: %w", err)
	}

	cash := cashCredits - cashDebits + withdrawals - cashDisbursed
	bank := bankCredits - bankDebits - withdrawals - bankDisbursed
	return &Totals{
		Cash:  cash,
		Bank:  bank,
		Total: cash + bank,
	}, nil
}
