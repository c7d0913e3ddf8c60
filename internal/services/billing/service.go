// Package billing manages collective payments: shared obligations fanned out
// into one pending item per student wallet, settled automatically from wallet
// balances. It also records the institutional funds movements the balance
// aggregation reads.
package billing

import (
	"context"
	"errors"
	"fmt"

	"campuspay/internal/models"
	"campuspay/internal/repositories"
)

var (
	ErrInvalidTitle   = errors.New("invalid payment title")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidChannel = errors.New("invalid disbursement channel")
	ErrNoWallets      = errors.New("no wallets to bill")
)

// Settler runs a settlement pass for one wallet inside the caller's unit of
// work. It is the same engine the ledger uses as its post-credit hook.
type Settler interface {
	SettleWallet(ctx context.Context, repo repositories.LedgerRepository, walletID uint, actor string) error
}

// CreatePaymentInput describes a new collective payment. An empty WalletIDs
// bills every wallet.
type CreatePaymentInput struct {
	Title            string
	AmountPerStudent int64
	WalletIDs        []uint
	Actor            string
}

type PaymentDetail struct {
	Payment models.CollectivePayment       `json:"payment"`
	Items   []models.CollectivePaymentItem `json:"items"`
}

type Service interface {
	// Create fans the payment out into pending items and immediately runs a
	// settlement pass per billed wallet, charging existing balances.
	Create(ctx context.Context, in CreatePaymentInput) (*models.CollectivePayment, error)
	Get(ctx context.Context, paymentID uint) (*PaymentDetail, error)
	List(ctx context.Context, limit, offset int) ([]models.CollectivePayment, error)

	RecordWithdrawal(ctx context.Context, amount int64, description, actor string) (*models.Withdrawal, error)
	RecordDisbursement(ctx context.Context, amount int64, channel, description, actor string) (*models.Disbursement, error)
}

type service struct {
	repo    repositories.LedgerRepository
	settler Settler
}

func NewService(repo repositories.LedgerRepository, settler Settler) Service {
	if repo == nil {
		panic("repo is required")
	}
	if settler == nil {
		panic("settler is required")
	}
	return &service{
		repo:    repo,
		settler: settler,
	}
}

func (s *service) Create(ctx context.Context, in CreatePaymentInput) (*models.CollectivePayment, error) {
	if in.Title == "" {
		return nil, ErrInvalidTitle
	}
	if in.AmountPerStudent <= 0 {
		return nil, ErrInvalidAmount
	}

	var payment *models.CollectivePayment
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		walletIDs, err := s.resolveWallets(tx, in.WalletIDs)
		if err != nil {
			return err
		}

		payment = &models.CollectivePayment{
			Title:            in.Title,
			AmountPerStudent: in.AmountPerStudent,
			Status:           models.PaymentStatusActive,
			CreatedBy:        in.Actor,
		}
		if err := tx.CreateCollectivePayment(payment); err != nil {
			return err
		}

		items := make([]*models.CollectivePaymentItem, 0, len(walletIDs))
		for _, walletID := range walletIDs {
			items = append(items, &models.CollectivePaymentItem{
				CollectivePaymentID: payment.ID,
				WalletID:            walletID,
				Amount:              in.AmountPerStudent,
				Status:              models.ItemStatusPending,
			})
		}
		if err := tx.CreatePaymentItems(items); err != nil {
			return err
		}

		// Charge whatever the wallets already hold.
		for _, walletID := range walletIDs {
			if err := s.settler.SettleWallet(ctx, tx, walletID, in.Actor); err != nil {
				return err
			}
		}

		payment, err = tx.RefreshCollectivePayment(payment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) resolveWallets(tx repositories.LedgerRepository, walletIDs []uint) ([]uint, error) {
	if len(walletIDs) > 0 {
		for _, id := range walletIDs {
			if _, err := tx.GetWalletByID(id); err != nil {
				return nil, err
			}
		}
		return walletIDs, nil
	}

	wallets, err := tx.ListWallets(-1, 0)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, ErrNoWallets
	}
	ids := make([]uint, 0, len(wallets))
	for _, w := range wallets {
		ids = append(ids, w.ID)
	}
	return ids, nil
}

func (s *service) Get(ctx context.Context, paymentID uint) (*PaymentDetail, error) {
	payment, err := s.repo.GetCollectivePayment(paymentID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListPaymentItems(paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment items: %w", err)
	}
	return &PaymentDetail{
		Payment: *payment,
		Items:   items,
	}, nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]models.CollectivePayment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListCollectivePayments(limit, offset)
}

func (s *service) RecordWithdrawal(ctx context.Context, amount int64, description, actor string) (*models.Withdrawal, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	withdrawal := &models.Withdrawal{
		Amount:      amount,
		Status:      models.WithdrawalStatusCompleted,
		Description: description,
		CreatedBy:   actor,
	}
	if err := s.repo.CreateWithdrawal(withdrawal); err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (s *service) RecordDisbursement(ctx context.Context, amount int64, channel, description, actor string) (*models.Disbursement, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if channel != models.ChannelCash && channel != models.ChannelTransfer {
		return nil, ErrInvalidChannel
	}
	disbursement := &models.Disbursement{
		Amount:      amount,
		Channel:     channel,
		Status:      models.DisbursementStatusApproved,
		Description: description,
		CreatedBy:   actor,
	}
	if err := s.repo.CreateDisbursement(disbursement); err != nil {
		return nil, err
	}
	return disbursement, nil
}
