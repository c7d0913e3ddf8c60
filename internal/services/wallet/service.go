package wallet

import (
	"context"
	"fmt"

	"campuspay/internal/config"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
)

// Service is the wallet aggregate: one running balance per student, created
// lazily and only ever mutated through the ledger.
type Service interface {
	// Ensure idempotently creates the student's wallet if none exists.
	// Concurrent calls for the same student resolve to exactly one row.
	Ensure(ctx context.Context, studentID uint) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	GetWalletByStudent(ctx context.Context, studentID uint) (*models.Wallet, error)
	// GetBalance returns the live running counter, never a ledger sum.
	GetBalance(ctx context.Context, walletID uint) (int64, error)
	// Reconcile replays the ledger and reports any drift between the counter
	// and sum(non-voided credits) - sum(non-voided debits).
	Reconcile(ctx context.Context, walletID uint) (*Reconciliation, error)
	ListWallets(ctx context.Context, limit, offset int) ([]models.Wallet, error)
}

// CacheOperator is the wallet read cache.
type CacheOperator interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, walletID uint) error
}

// Reconciliation is the result of replaying one wallet's ledger.
type Reconciliation struct {
	WalletID      uint  `json:"wallet_id"`
	Balance       int64 `json:"balance"`
	LedgerBalance int64 `json:"ledger_balance"`
	CreditsTotal  int64 `json:"credits_total"`
	DebitsTotal   int64 `json:"debits_total"`
	Drift         int64 `json:"drift"`
	Consistent    bool  `json:"consistent"`
}

type service struct {
	repo  repositories.LedgerRepository
	cache CacheOperator
	cfg   config.LedgerConfig
}

func NewService(repo repositories.LedgerRepository, cache CacheOperator, cfg config.LedgerConfig) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

func (s *service) Ensure(ctx context.Context, studentID uint) (*models.Wallet, error) {
	wallet := &models.Wallet{
		StudentID: studentID,
		Balance:   s.cfg.OpeningBalance,
	}
	if err := s.repo.CreateWalletIfAbsent(wallet); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}
	if s.cache != nil {
		s.cache.SetWallet(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, err := s.cache.GetWallet(ctx, walletID); err == nil {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetWalletByID(walletID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetWallet(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) GetWalletByStudent(ctx context.Context, studentID uint) (*models.Wallet, error) {
	return s.repo.GetWalletByStudentID(studentID)
}

func (s *service) GetBalance(ctx context.Context, walletID uint) (int64, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *service) Reconcile(ctx context.Context, walletID uint) (*Reconciliation, error) {
	wallet, err := s.repo.GetWalletByID(walletID)
	if err != nil {
		return nil, err
	}

	credits, err := s.repo.SumWalletAmount(walletID, models.KindCredit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum credits: %w", err)
	}
	debits, err := s.repo.SumWalletAmount(walletID, models.KindDebit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum debits: %w", err)
	}

	ledgerBalance := credits - debits
	return &Reconciliation{
		WalletID:      walletID,
		Balance:       wallet.Balance,
		LedgerBalance: ledgerBalance,
		CreditsTotal:  credits,
		DebitsTotal:   debits,
		Drift:         wallet.Balance - ledgerBalance,
		Consistent:    wallet.Balance == ledgerBalance,
	}, nil
}

func (s *service) ListWallets(ctx context.Context, limit, offset int) ([]models.Wallet, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListWallets(limit, offset)
}
