// Package topup handles bank-transfer top ups through the Midtrans payment
// gateway. The wallet credit is only appended when Midtrans notifies
// settlement, and the order id doubles as the ledger reference so replayed
// notifications cannot credit a wallet twice.
package topup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var (
	ErrInvalidAmount = errors.New("invalid top-up amount")
	ErrOrderNotFound = errors.New("top-up order not found")
	ErrChargeFailed  = errors.New("failed to create payment charge")
)

// SnapClient is the slice of the Midtrans Snap API the service uses.
type SnapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// Notification is the subset of the Midtrans payment notification payload
// the service needs to resolve an order.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

type Service interface {
	// CreateOrder registers a pending top up and creates the Snap charge the
	// payer completes externally.
	CreateOrder(ctx context.Context, walletID uint, amount int64, actor string) (*models.TopUpOrder, error)
	// HandleNotification resolves a gateway notification. On settlement it
	// appends the wallet credit (method=transfer), which triggers the usual
	// auto-settlement pass.
	HandleNotification(ctx context.Context, n Notification) error
}

type service struct {
	repo   repositories.LedgerRepository
	ledger ledger.Service
	snap   SnapClient
}

func NewService(repo repositories.LedgerRepository, ledgerSvc ledger.Service, snapClient SnapClient) Service {
	if repo == nil {
		panic("repo is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &service{
		repo:   repo,
		ledger: ledgerSvc,
		snap:   snapClient,
	}
}

func (s *service) CreateOrder(ctx context.Context, walletID uint, amount int64, actor string) (*models.TopUpOrder, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.repo.GetWalletByID(walletID); err != nil {
		return nil, err
	}

	order := &models.TopUpOrder{
		OrderID:   fmt.Sprintf("TOPUP-%d-%s", walletID, uuid.NewString()[:8]),
		WalletID:  walletID,
		Amount:    amount,
		Status:    models.TopUpStatusPending,
		CreatedBy: actor,
	}

	if s.snap != nil {
		resp, errSnap := s.snap.CreateTransaction(&snap.Request{
			TransactionDetails: midtrans.TransactionDetails{
				OrderID:  order.OrderID,
				GrossAmt: amount,
			},
			Items: &[]midtrans.ItemDetails{{
				ID:    fmt.Sprintf("wallet-%d", walletID),
				Name:  "Student wallet top up",
				Price: amount,
				Qty:   1,
			}},
		})
		if errSnap != nil {
			return nil, fmt.Errorf("%w: %v", ErrChargeFailed, errSnap)
		}
		order.SnapToken = resp.Token
		order.RedirectURL = resp.RedirectURL
	}

	if err := s.repo.CreateTopUpOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) HandleNotification(ctx context.Context, n Notification) error {
	order, err := s.repo.GetTopUpOrderByOrderID(n.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	status := mapStatus(n)
	if order.Status != models.TopUpStatusPending || status == models.TopUpStatusPending {
		// Already resolved, or nothing to resolve yet.
		return nil
	}

	if status == models.TopUpStatusFailed {
		order.Status = models.TopUpStatusFailed
		return s.repo.SaveTopUpOrder(order)
	}

	if _, err := s.ledger.Append(ctx, ledger.AppendInput{
		WalletID:    order.WalletID,
		Kind:        models.KindCredit,
		Amount:      order.Amount,
		Method:      models.MethodTransfer,
		Description: "Bank transfer top up",
		Reference:   order.OrderID,
		Actor:       order.CreatedBy,
	}); err != nil {
		if errors.Is(err, ledger.ErrDuplicateReference) {
			// The credit already landed on an earlier delivery.
			log.Printf("top-up %s already credited", order.OrderID)
		} else {
			return err
		}
	}

	order.Status = models.TopUpStatusSettled
	return s.repo.SaveTopUpOrder(order)
}

func mapStatus(n Notification) string {
	switch n.TransactionStatus {
	case "capture":
		if n.FraudStatus == "accept" {
			return models.TopUpStatusSettled
		}
		return models.TopUpStatusPending
	case "settlement":
		return models.TopUpStatusSettled
	case "deny", "cancel", "expire":
		return models.TopUpStatusFailed
	default:
		return models.TopUpStatusPending
	}
}

// NewSnapClient builds the production Snap client from the server key.
func NewSnapClient(serverKey string, production bool) SnapClient {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	client := snap.Client{}
	client.New(serverKey, env)
	return &client
}
