package ledger

import (
	"context"

	"campuspay/internal/models"
	"campuspay/internal/repositories"
)

// AppendInput describes one ledger append request.
type AppendInput struct {
	WalletID    uint
	Kind        string
	Amount      int64
	Method      string
	Description string
	Reference   string
	// ReplacesReference links an edit re-creation back to the voided original.
	ReplacesReference string
	Actor             string
}

// CreditHook runs inside the append's unit of work after a credit has been
// written. The settlement engine implements it; the hook's writes commit or
// roll back together with the triggering credit.
type CreditHook interface {
	AfterCredit(ctx context.Context, repo repositories.LedgerRepository, txn *models.WalletTransaction) error
}

// WalletCache is the cache surface the ledger needs: invalidation after a
// wallet's balance changed.
type WalletCache interface {
	InvalidateWallet(ctx context.Context, walletID uint) error
}

// MetricsCollector records ledger activity.
type MetricsCollector interface {
	RecordTransaction(kind string, amount int64)
	RecordError(operation, errType string)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransaction(kind string, amount int64) {}
func (NoopMetricsCollector) RecordError(operation, errType string)      {}
