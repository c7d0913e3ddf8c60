package topup

import (
	"context"
	"testing"

	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/ledger"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapClient struct {
	requests []*snap.Request
	fail     bool
}

func (f *fakeSnapClient) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.requests = append(f.requests, req)
	if f.fail {
		return nil, &midtrans.Error{Message: "gateway unavailable"}
	}
	return &snap.Response{
		Token:       "snap-token",
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token",
	}, nil
}

func newTopUpService(t *testing.T, snapClient SnapClient) (*repositories.MemoryLedgerRepository, Service, *models.Wallet) {
	t.Helper()
	repo := repositories.NewMemoryLedgerRepository()
	wallet := &models.Wallet{StudentID: 1}
	require.NoError(t, repo.CreateWalletIfAbsent(wallet))

	ledgerSvc := ledger.NewService(repo, nil, nil, nil)
	return repo, NewService(repo, ledgerSvc, snapClient), wallet
}

func TestTopUpService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a pending order with the snap token", func(t *testing.T) {
		client := &fakeSnapClient{}
		repo, svc, wallet := newTopUpService(t, client)

		order, err := svc.CreateOrder(ctx, wallet.ID, 50000, "staff@school.test")
		require.NoError(t, err)
		assert.Equal(t, models.TopUpStatusPending, order.Status)
		assert.Equal(t, "snap-token", order.SnapToken)
		assert.NotEmpty(t, order.OrderID)

		require.Len(t, client.requests, 1)
		assert.Equal(t, order.OrderID, client.requests[0].TransactionDetails.OrderID)
		assert.Equal(t, int64(50000), client.requests[0].TransactionDetails.GrossAmt)

		stored, err := repo.GetTopUpOrderByOrderID(order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, wallet.ID, stored.WalletID)
	})

	t.Run("rejects invalid amounts and unknown wallets", func(t *testing.T) {
		_, svc, wallet := newTopUpService(t, &fakeSnapClient{})

		_, err := svc.CreateOrder(ctx, wallet.ID, 0, "staff@school.test")
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.CreateOrder(ctx, 99, 1000, "staff@school.test")
		assert.ErrorIs(t, err, repositories.ErrWalletNotFound)
	})

	t.Run("gateway failure surfaces as a charge error", func(t *testing.T) {
		repo, svc, wallet := newTopUpService(t, &fakeSnapClient{fail: true})

		_, err := svc.CreateOrder(ctx, wallet.ID, 1000, "staff@school.test")
		assert.ErrorIs(t, err, ErrChargeFailed)

		_, err = repo.GetTopUpOrderByOrderID("")
		assert.ErrorIs(t, err, repositories.ErrOrderNotFound)
	})
}

func TestTopUpService_HandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("settlement credits the wallet exactly once", func(t *testing.T) {
		repo, svc, wallet := newTopUpService(t, &fakeSnapClient{})
		order, err := svc.CreateOrder(ctx, wallet.ID, 50000, "staff@school.test")
		require.NoError(t, err)

		n := Notification{OrderID: order.OrderID, TransactionStatus: "settlement"}
		require.NoError(t, svc.HandleNotification(ctx, n))

		w, err := repo.GetWalletByID(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), w.Balance)

		stored, err := repo.GetTopUpOrderByOrderID(order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, models.TopUpStatusSettled, stored.Status)

		// A replayed notification is a no-op.
		require.NoError(t, svc.HandleNotification(ctx, n))
		w, err = repo.GetWalletByID(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), w.Balance)
	})

	t.Run("capture with accepted fraud status settles", func(t *testing.T) {
		repo, svc, wallet := newTopUpService(t, &fakeSnapClient{})
		order, err := svc.CreateOrder(ctx, wallet.ID, 20000, "staff@school.test")
		require.NoError(t, err)

		require.NoError(t, svc.HandleNotification(ctx, Notification{
			OrderID:           order.OrderID,
			TransactionStatus: "capture",
			FraudStatus:       "accept",
		}))

		w, err := repo.GetWalletByID(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), w.Balance)
	})

	t.Run("expire marks the order failed without crediting", func(t *testing.T) {
		repo, svc, wallet := newTopUpService(t, &fakeSnapClient{})
		order, err := svc.CreateOrder(ctx, wallet.ID, 20000, "staff@school.test")
		require.NoError(t, err)

		require.NoError(t, svc.HandleNotification(ctx, Notification{
			OrderID:           order.OrderID,
			TransactionStatus: "expire",
		}))

		stored, err := repo.GetTopUpOrderByOrderID(order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, models.TopUpStatusFailed, stored.Status)

		w, err := repo.GetWalletByID(wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), w.Balance)
	})

	t.Run("pending notifications leave the order untouched", func(t *testing.T) {
		repo, svc, wallet := newTopUpService(t, &fakeSnapClient{})
		order, err := svc.CreateOrder(ctx, wallet.ID, 20000, "staff@school.test")
		require.NoError(t, err)

		require.NoError(t, svc.HandleNotification(ctx, Notification{
			OrderID:           order.OrderID,
			TransactionStatus: "pending",
		}))

		stored, err := repo.GetTopUpOrderByOrderID(order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, models.TopUpStatusPending, stored.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, svc, _ := newTopUpService(t, &fakeSnapClient{})
		err := svc.HandleNotification(ctx, Notification{OrderID: "TOPUP-MISSING"})
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
