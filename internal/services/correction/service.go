// Package correction voids and edits ledger transactions without ever
// mutating history: voids mark-and-preserve, edits void-then-recreate.
package correction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campuspay/internal/config"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/ledger"

	"github.com/google/uuid"
)

var ErrAlreadyVoided = errors.New("transaction already voided")

// EditInput carries the replacement fields for an edit. The transaction's
// kind is immutable; only amount, description and method can change.
type EditInput struct {
	Amount      int64
	Description string
	Method      string
	Actor       string
}

type Service interface {
	// Void marks the transaction voided and applies the inverse balance
	// adjustment. The row is preserved; a second void fails.
	Void(ctx context.Context, transactionID uint, actor string) error
	// Edit voids the original and appends a replacement row that carries the
	// original's reference as its trace-back link.
	Edit(ctx context.Context, transactionID uint, in EditInput) (*models.WalletTransaction, error)
}

type service struct {
	repo  repositories.LedgerRepository
	cache ledger.WalletCache
	cfg   config.LedgerConfig
}

func NewService(repo repositories.LedgerRepository, cache ledger.WalletCache, cfg config.LedgerConfig) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

func (s *service) Void(ctx context.Context, transactionID uint, actor string) error {
	var walletID uint
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		txn, err := voidIn(tx, transactionID, actor)
		if err != nil {
			return err
		}
		walletID = txn.WalletID
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, walletID); err != nil {
			log.Printf("failed to invalidate wallet %d cache: %v", walletID, err)
		}
	}
	return nil
}

func (s *service) Edit(ctx context.Context, transactionID uint, in EditInput) (*models.WalletTransaction, error) {
	var replacement *models.WalletTransaction
	err := s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		original, err := voidIn(tx, transactionID, in.Actor)
		if err != nil {
			return err
		}

		replacement, err = ledger.AppendIn(tx, ledger.AppendInput{
			WalletID:          original.WalletID,
			Kind:              original.Kind,
			Amount:            in.Amount,
			Method:            in.Method,
			Description:       in.Description,
			Reference:         s.newReference(),
			ReplacesReference: original.Reference,
			Actor:             in.Actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, replacement.WalletID); err != nil {
			log.Printf("failed to invalidate wallet %d cache: %v", replacement.WalletID, err)
		}
	}
	return replacement, nil
}

// voidIn marks the transaction voided and applies the inverse balance
// adjustment within the caller's unit of work. The transaction row is locked
// before the voided check so a concurrent void of the same transaction waits
// here and then sees the committed flag.
func voidIn(repo repositories.LedgerRepository, transactionID uint, actor string) (*models.WalletTransaction, error) {
	txn, err := repo.GetTransactionForUpdate(transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Voided {
		return nil, ErrAlreadyVoided
	}

	wallet, err := repo.GetWalletForUpdate(txn.WalletID)
	if err != nil {
		return nil, err
	}

	switch txn.Kind {
	case models.KindCredit:
		// Removing a credit the student already spent would drive the
		// balance negative.
		if wallet.Balance < txn.Amount {
			return nil, ledger.ErrInsufficientBalance
		}
		wallet.Balance -= txn.Amount
	case models.KindDebit:
		wallet.Balance += txn.Amount
	}

	if err := repo.SaveWallet(wallet); err != nil {
		return nil, err
	}

	now := time.Now()
	txn.Voided = true
	txn.VoidedAt = &now
	txn.VoidedBy = actor
	if err := repo.SaveTransaction(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *service) newReference() string {
	prefix := s.cfg.CorrectionRefPrefix
	if prefix == "" {
		prefix = "COR"
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
