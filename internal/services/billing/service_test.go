package billing

import (
	"context"
	"testing"

	"campuspay/internal/config"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/settlement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBillingService(t *testing.T) (*repositories.MemoryLedgerRepository, Service) {
	t.Helper()
	repo := repositories.NewMemoryLedgerRepository()
	engine := settlement.NewEngine(config.LedgerConfig{})
	return repo, NewService(repo, engine)
}

func addWallet(t *testing.T, repo *repositories.MemoryLedgerRepository, studentID uint, balance int64) *models.Wallet {
	t.Helper()
	wallet := &models.Wallet{StudentID: studentID, Balance: balance}
	require.NoError(t, repo.CreateWalletIfAbsent(wallet))
	return wallet
}

func TestBillingService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out one item per wallet and charges existing balances", func(t *testing.T) {
		repo, svc := newBillingService(t)
		rich := addWallet(t, repo, 1, 50000)
		poor := addWallet(t, repo, 2, 10000)

		payment, err := svc.Create(ctx, CreatePaymentInput{
			Title:            "Semester exam fee",
			AmountPerStudent: 25000,
			Actor:            "admin@school.test",
		})
		require.NoError(t, err)

		assert.Equal(t, models.PaymentStatusActive, payment.Status)
		assert.Equal(t, int64(25000), payment.CollectedAmount)
		assert.Equal(t, int64(25000), payment.OutstandingAmount)

		items, err := repo.ListPaymentItems(payment.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)

		byWallet := map[uint]models.CollectivePaymentItem{}
		for _, item := range items {
			byWallet[item.WalletID] = item
		}
		assert.Equal(t, models.ItemStatusPaid, byWallet[rich.ID].Status)
		assert.Equal(t, models.ItemStatusPending, byWallet[poor.ID].Status)
		assert.Contains(t, byWallet[poor.ID].FailureReason, "insufficient balance")

		w, err := repo.GetWalletByID(rich.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), w.Balance)

		w, err = repo.GetWalletByID(poor.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), w.Balance)
	})

	t.Run("explicit wallet selection bills only those wallets", func(t *testing.T) {
		repo, svc := newBillingService(t)
		selected := addWallet(t, repo, 1, 30000)
		addWallet(t, repo, 2, 30000)

		payment, err := svc.Create(ctx, CreatePaymentInput{
			Title:            "Dormitory trip",
			AmountPerStudent: 15000,
			WalletIDs:        []uint{selected.ID},
			Actor:            "admin@school.test",
		})
		require.NoError(t, err)

		items, err := repo.ListPaymentItems(payment.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, selected.ID, items[0].WalletID)
		assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	})

	t.Run("unknown wallet aborts the whole payment", func(t *testing.T) {
		repo, svc := newBillingService(t)
		addWallet(t, repo, 1, 30000)

		_, err := svc.Create(ctx, CreatePaymentInput{
			Title:            "Dormitory trip",
			AmountPerStudent: 15000,
			WalletIDs:        []uint{99},
			Actor:            "admin@school.test",
		})
		assert.ErrorIs(t, err, repositories.ErrWalletNotFound)

		payments, err := repo.ListCollectivePayments(10, 0)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})

	t.Run("input validation", func(t *testing.T) {
		_, svc := newBillingService(t)

		_, err := svc.Create(ctx, CreatePaymentInput{AmountPerStudent: 1000})
		assert.ErrorIs(t, err, ErrInvalidTitle)

		_, err = svc.Create(ctx, CreatePaymentInput{Title: "Fee", AmountPerStudent: 0})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("no wallets to bill", func(t *testing.T) {
		_, svc := newBillingService(t)
		_, err := svc.Create(ctx, CreatePaymentInput{
			Title:            "Fee",
			AmountPerStudent: 1000,
		})
		assert.ErrorIs(t, err, ErrNoWallets)
	})
}

func TestBillingService_FundsMovements(t *testing.T) {
	ctx := context.Background()

	t.Run("withdrawal is recorded as completed", func(t *testing.T) {
		repo, svc := newBillingService(t)
		withdrawal, err := svc.RecordWithdrawal(ctx, 20000, "Cash for canteen float", "admin@school.test")
		require.NoError(t, err)
		assert.Equal(t, models.WithdrawalStatusCompleted, withdrawal.Status)

		total, err := repo.SumWithdrawals(models.WithdrawalStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), total)
	})

	t.Run("disbursement requires a valid channel", func(t *testing.T) {
		_, svc := newBillingService(t)

		_, err := svc.RecordDisbursement(ctx, 5000, "cheque", "Supplies", "admin@school.test")
		assert.ErrorIs(t, err, ErrInvalidChannel)

		d, err := svc.RecordDisbursement(ctx, 5000, models.ChannelTransfer, "Supplies", "admin@school.test")
		require.NoError(t, err)
		assert.Equal(t, models.DisbursementStatusApproved, d.Status)
	})

	t.Run("amounts must be positive", func(t *testing.T) {
		_, svc := newBillingService(t)

		_, err := svc.RecordWithdrawal(ctx, 0, "", "admin@school.test")
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.RecordDisbursement(ctx, -100, models.ChannelCash, "", "admin@school.test")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}
