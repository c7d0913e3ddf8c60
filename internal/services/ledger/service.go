package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"campuspay/internal/models"
	"campuspay/internal/repositories"
)

// Service is the ledger store: the only write path for wallet balances and
// transaction rows.
type Service interface {
	// Append writes one transaction and the matching balance adjustment as a
	// single atomic unit. When the transaction is a credit and a CreditHook is
	// configured, the hook's settlement side effects belong to the same unit.
	Append(ctx context.Context, in AppendInput) (*models.WalletTransaction, error)
	GetTransaction(ctx context.Context, id uint) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error)
}

type service struct {
	repo    repositories.LedgerRepository
	cache   WalletCache
	hook    CreditHook
	metrics MetricsCollector
}

// NewService creates a new ledger service. The hook is the explicit
// post-credit settlement dependency; pass nil to append without settlement.
func NewService(repo repositories.LedgerRepository, cache WalletCache, hook CreditHook, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		cache:   cache,
		hook:    hook,
		metrics: metrics,
	}
}

func (s *service) Append(ctx context.Context, in AppendInput) (*models.WalletTransaction, error) {
	if err := validate(in); err != nil {
		s.metrics.RecordError("append", err.Error())
		return nil, err
	}

	var txn *models.WalletTransaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		t, err := AppendIn(tx, in)
		if err != nil {
			return err
		}
		txn = t
		if in.Kind == models.KindCredit && s.hook != nil {
			return s.hook.AfterCredit(ctx, tx, t)
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("append", err.Error())
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, in.WalletID); err != nil {
			log.Printf("failed to invalidate wallet %d cache: %v", in.WalletID, err)
		}
	}
	s.metrics.RecordTransaction(in.Kind, in.Amount)
	return txn, nil
}

func (s *service) GetTransaction(ctx context.Context, id uint) (*models.WalletTransaction, error) {
	txn, err := s.repo.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) ListTransactions(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	txns, err := s.repo.ListWalletTransactions(walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

func validate(in AppendInput) error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if in.Kind != models.KindCredit && in.Kind != models.KindDebit {
		return ErrInvalidKind
	}
	switch in.Method {
	case models.MethodCash, models.MethodTransfer, models.MethodAdminVoid:
	default:
		return ErrInvalidMethod
	}
	if in.Reference == "" {
		return ErrMissingReference
	}
	return nil
}

// AppendIn performs the append inside an already-open unit of work. The
// settlement engine and the correction service use it to write further ledger
// rows within the caller's transaction boundary.
func AppendIn(repo repositories.LedgerRepository, in AppendInput) (*models.WalletTransaction, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	wallet, err := repo.GetWalletForUpdate(in.WalletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	switch in.Kind {
	case models.KindCredit:
		wallet.Balance += in.Amount
	case models.KindDebit:
		if wallet.Balance < in.Amount {
			return nil, ErrInsufficientBalance
		}
		wallet.Balance -= in.Amount
	}

	if err := repo.SaveWallet(wallet); err != nil {
		return nil, err
	}

	txn := &models.WalletTransaction{
		WalletID:          in.WalletID,
		Kind:              in.Kind,
		Amount:            in.Amount,
		BalanceAfter:      wallet.Balance,
		Description:       in.Description,
		Reference:         in.Reference,
		Method:            in.Method,
		ReplacesReference: in.ReplacesReference,
		CreatedBy:         in.Actor,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		if errors.Is(err, repositories.ErrDuplicateReference) {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}
	return txn, nil
}
