// Package settlement debits wallets against their pending collective-payment
// obligations. The engine runs inside the ledger's append unit of work as its
// post-credit hook; it can also be invoked directly to charge existing
// balances when a new collective payment is created.
package settlement

import (
	"context"
	"fmt"
	"time"

	"campuspay/internal/config"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/ledger"

	"github.com/google/uuid"
)

// Engine settles a wallet's pending obligations oldest first. A shortfall on
// one item is recorded on the item and never blocks later items or the
// triggering credit; only infrastructure failures roll the unit back.
type Engine struct {
	cfg config.LedgerConfig
}

func NewEngine(cfg config.LedgerConfig) *Engine {
	return &Engine{cfg: cfg}
}

// AfterCredit implements ledger.CreditHook.
func (e *Engine) AfterCredit(ctx context.Context, repo repositories.LedgerRepository, txn *models.WalletTransaction) error {
	return e.SettleWallet(ctx, repo, txn.WalletID, txn.CreatedBy)
}

// SettleWallet runs one settlement pass for a wallet inside the caller's unit
// of work. Partial settlement is a normal outcome; the per-item result is
// observable through each item's status and failure reason.
func (e *Engine) SettleWallet(ctx context.Context, repo repositories.LedgerRepository, walletID uint, actor string) error {
	items, err := repo.PendingItemsForWallet(walletID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	touched := make(map[uint]bool)
	for i := range items {
		item := &items[i]
		touched[item.CollectivePaymentID] = true

		// The balance moves as earlier items settle within this pass.
		wallet, err := repo.GetWalletForUpdate(walletID)
		if err != nil {
			return err
		}

		if wallet.Balance < item.Amount {
			item.FailureReason = fmt.Sprintf(
				"insufficient balance: wallet holds %d, obligation requires %d",
				wallet.Balance, item.Amount,
			)
			if err := repo.SavePaymentItem(item); err != nil {
				return err
			}
			continue
		}

		payment, err := repo.GetCollectivePayment(item.CollectivePaymentID)
		if err != nil {
			return err
		}

		debit, err := ledger.AppendIn(repo, ledger.AppendInput{
			WalletID:    walletID,
			Kind:        models.KindDebit,
			Amount:      item.Amount,
			Method:      models.MethodCash,
			Description: fmt.Sprintf("Payment for %s", payment.Title),
			Reference:   e.newReference(),
			Actor:       actor,
		})
		if err != nil {
			return err
		}

		now := time.Now()
		item.Status = models.ItemStatusPaid
		item.TransactionID = &debit.ID
		item.PaidAt = &now
		item.FailureReason = ""
		if err := repo.SavePaymentItem(item); err != nil {
			return err
		}
	}

	for paymentID := range touched {
		if _, err := repo.RefreshCollectivePayment(paymentID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) newReference() string {
	prefix := e.cfg.SettlementRefPrefix
	if prefix == "" {
		prefix = "STL"
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
