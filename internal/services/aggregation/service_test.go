package aggregation

import (
	"context"
	"testing"

	"campuspay/internal/config"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/correction"
	"campuspay/internal/services/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregationService_Totals(t *testing.T) {
	ctx := context.Background()

	t.Run("empty ledger yields zeros", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		svc := NewService(repo)

		totals, err := svc.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), totals.Cash)
		assert.Equal(t, int64(0), totals.Bank)
		assert.Equal(t, int64(0), totals.Total)
	})

	t.Run("methods split into pools", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := &models.Wallet{StudentID: 1}
		require.NoError(t, repo.CreateWalletIfAbsent(wallet))
		ledgerSvc := ledger.NewService(repo, nil, nil, nil)

		record := func(kind string, amount int64, method, ref string) {
			_, err := ledgerSvc.Append(ctx, ledger.AppendInput{
				WalletID: wallet.ID, Kind: kind, Amount: amount,
				Method: method, Reference: ref,
			})
			require.NoError(t, err)
		}

		record(models.KindCredit, 50000, models.MethodCash, "C1")
		record(models.KindCredit, 30000, models.MethodTransfer, "C2")
		record(models.KindDebit, 20000, models.MethodCash, "D1")
		record(models.KindDebit, 5000, models.MethodTransfer, "D2")

		svc := NewService(repo)
		totals, err := svc.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(30000), totals.Cash)
		assert.Equal(t, int64(25000), totals.Bank)
		assert.Equal(t, int64(55000), totals.Total)
	})

	t.Run("withdrawal moves value between pools without changing total", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := &models.Wallet{StudentID: 1}
		require.NoError(t, repo.CreateWalletIfAbsent(wallet))
		ledgerSvc := ledger.NewService(repo, nil, nil, nil)

		_, err := ledgerSvc.Append(ctx, ledger.AppendInput{
			WalletID: wallet.ID, Kind: models.KindCredit, Amount: 40000,
			Method: models.MethodTransfer, Reference: "C1",
		})
		require.NoError(t, err)

		require.NoError(t, repo.CreateWithdrawal(&models.Withdrawal{
			Amount: 15000,
			Status: models.WithdrawalStatusCompleted,
		}))

		svc := NewService(repo)
		totals, err := svc.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(15000), totals.Cash)
		assert.Equal(t, int64(25000), totals.Bank)
		assert.Equal(t, int64(40000), totals.Total)
	})

	t.Run("disbursements reduce their own pool", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := &models.Wallet{StudentID: 1}
		require.NoError(t, repo.CreateWalletIfAbsent(wallet))
		ledgerSvc := ledger.NewService(repo, nil, nil, nil)

		_, err := ledgerSvc.Append(ctx, ledger.AppendInput{
			WalletID: wallet.ID, Kind: models.KindCredit, Amount: 50000,
			Method: models.MethodCash, Reference: "C1",
		})
		require.NoError(t, err)

		require.NoError(t, repo.CreateDisbursement(&models.Disbursement{
			Amount:  10000,
			Channel: models.ChannelCash,
			Status:  models.DisbursementStatusApproved,
		}))

		svc := NewService(repo)
		totals, err := svc.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(40000), totals.Cash)
		assert.Equal(t, int64(40000), totals.Total)
	})

	t.Run("voided transactions are excluded", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := &models.Wallet{StudentID: 1}
		require.NoError(t, repo.CreateWalletIfAbsent(wallet))
		ledgerSvc := ledger.NewService(repo, nil, nil, nil)
		correctionSvc := correction.NewService(repo, nil, config.LedgerConfig{})

		_, err := ledgerSvc.Append(ctx, ledger.AppendInput{
			WalletID: wallet.ID, Kind: models.KindCredit, Amount: 20000,
			Method: models.MethodCash, Reference: "C1",
		})
		require.NoError(t, err)

		voided, err := ledgerSvc.Append(ctx, ledger.AppendInput{
			WalletID: wallet.ID, Kind: models.KindCredit, Amount: 5000,
			Method: models.MethodCash, Reference: "C2",
		})
		require.NoError(t, err)
		require.NoError(t, correctionSvc.Void(ctx, voided.ID, "admin@school.test"))

		svc := NewService(repo)
		totals, err := svc.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), totals.Cash)
	})
}
