package ledger

import (
	"context"
	"errors"
	"testing"

	"campuspay/internal/models"
	"campuspay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(t *testing.T, repo *repositories.MemoryLedgerRepository, studentID uint, balance int64) *models.Wallet {
	t.Helper()
	wallet := &models.Wallet{StudentID: studentID, Balance: balance}
	require.NoError(t, repo.CreateWalletIfAbsent(wallet))
	return wallet
}

func TestLedgerService_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("credit increases balance and records snapshot", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := newTestWallet(t, repo, 1, 10000)
		svc := NewService(repo, nil, nil, nil)

		txn, err := svc.Append(ctx, AppendInput{
			WalletID:    wallet.ID,
			Kind:        models.KindCredit,
			Amount:      5000,
			Method:      models.MethodCash,
			Description: "Cash deposit",
			Reference:   "DEP-001",
			Actor:       "staff@school.test",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(15000), txn.BalanceAfter)
		assert.Equal(t, "staff@school.test", txn.CreatedBy)

		stored, err := repo.GetWalletByID(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15000), stored.Balance)
	})

	t.Run("debit decreases balance", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := newTestWallet(t, repo, 1, 10000)
		svc := NewService(repo, nil, nil, nil)

		txn, err := svc.Append(ctx, AppendInput{
			WalletID:  wallet.ID,
			Kind:      models.KindDebit,
			Amount:    4000,
			Method:    models.MethodCash,
			Reference: "PAY-001",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(6000), txn.BalanceAfter)
	})

	t.Run("debit beyond balance is rejected and leaves no trace", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := newTestWallet(t, repo, 1, 3000)
		svc := NewService(repo, nil, nil, nil)

		_, err := svc.Append(ctx, AppendInput{
			WalletID:  wallet.ID,
			Kind:      models.KindDebit,
			Amount:    5000,
			Method:    models.MethodCash,
			Reference: "PAY-002",
		})
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		stored, err := repo.GetWalletByID(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), stored.Balance)

		txns, err := repo.ListWalletTransactions(wallet.ID, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	t.Run("duplicate reference is rejected", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		wallet := newTestWallet(t, repo, 1, 0)
		svc := NewService(repo, nil, nil, nil)

		in := AppendInput{
			WalletID:  wallet.ID,
			Kind:      models.KindCredit,
			Amount:    1000,
			Method:    models.MethodTransfer,
			Reference: "TRF-001",
		}
		_, err := svc.Append(ctx, in)
		require.NoError(t, err)

		_, err = svc.Append(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateReference)

		stored, err := repo.GetWalletByID(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), stored.Balance)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		repo := repositories.NewMemoryLedgerRepository()
		svc := NewService(repo, nil, nil, nil)

		_, err := svc.Append(ctx, AppendInput{
			WalletID:  99,
			Kind:      models.KindCredit,
			Amount:    1000,
			Method:    models.MethodCash,
			Reference: "DEP-404",
		})
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})
}

func TestLedgerService_Validation(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryLedgerRepository()
	wallet := newTestWallet(t, repo, 1, 1000)
	svc := NewService(repo, nil, nil, nil)

	tests := []struct {
		name    string
		input   AppendInput
		wantErr error
	}{
		{
			name: "zero amount",
			input: AppendInput{
				WalletID: wallet.ID, Kind: models.KindCredit, Amount: 0,
				Method: models.MethodCash, Reference: "R1",
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			input: AppendInput{
				WalletID: wallet.ID, Kind: models.KindCredit, Amount: -500,
				Method: models.MethodCash, Reference: "R2",
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "unknown kind",
			input: AppendInput{
				WalletID: wallet.ID, Kind: "transfer", Amount: 500,
				Method: models.MethodCash, Reference: "R3",
			},
			wantErr: ErrInvalidKind,
		},
		{
			name: "unknown method",
			input: AppendInput{
				WalletID: wallet.ID, Kind: models.KindCredit, Amount: 500,
				Method: "cheque", Reference: "R4",
			},
			wantErr: ErrInvalidMethod,
		},
		{
			name: "missing reference",
			input: AppendInput{
				WalletID: wallet.ID, Kind: models.KindCredit, Amount: 500,
				Method: models.MethodCash,
			},
			wantErr: ErrMissingReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Append(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type failingHook struct{}

func (failingHook) AfterCredit(ctx context.Context, repo repositories.LedgerRepository, txn *models.WalletTransaction) error {
	return errors.New("settlement blew up")
}

func TestLedgerService_HookFailureRollsBackCredit(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryLedgerRepository()
	wallet := newTestWallet(t, repo, 1, 0)
	svc := NewService(repo, nil, failingHook{}, nil)

	_, err := svc.Append(ctx, AppendInput{
		WalletID:  wallet.ID,
		Kind:      models.KindCredit,
		Amount:    2000,
		Method:    models.MethodCash,
		Reference: "DEP-HOOK",
	})
	require.Error(t, err)

	// The credit and the hook share one unit of work.
	stored, err := repo.GetWalletByID(wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Balance)

	txns, err := repo.ListWalletTransactions(wallet.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

type failingCache struct {
	calls int
}

func (c *failingCache) InvalidateWallet(ctx context.Context, walletID uint) error {
	c.calls++
	return errors.New("redis down")
}

func TestLedgerService_CacheInvalidationFailureDoesNotFailAppend(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryLedgerRepository()
	wallet := newTestWallet(t, repo, 1, 0)
	cache := &failingCache{}
	svc := NewService(repo, cache, nil, nil)

	txn, err := svc.Append(ctx, AppendInput{
		WalletID:  wallet.ID,
		Kind:      models.KindCredit,
		Amount:    5000,
		Method:    models.MethodCash,
		Reference: "DEP-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), txn.BalanceAfter)
	assert.Equal(t, 1, cache.calls)
}

func TestLedgerService_ListTransactions(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryLedgerRepository()
	wallet := newTestWallet(t, repo, 1, 0)
	svc := NewService(repo, nil, nil, nil)

	for _, ref := range []string{"A", "B", "C"} {
		_, err := svc.Append(ctx, AppendInput{
			WalletID:  wallet.ID,
			Kind:      models.KindCredit,
			Amount:    1000,
			Method:    models.MethodCash,
			Reference: ref,
		})
		require.NoError(t, err)
	}

	txns, err := svc.ListTransactions(ctx, wallet.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	// Newest first.
	assert.Equal(t, "C", txns[0].Reference)
	assert.Equal(t, "B", txns[1].Reference)
}
