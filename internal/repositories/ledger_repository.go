package repositories

import (
	"errors"

	"campuspay/internal/models"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPaymentNotFound     = errors.New("collective payment not found")
	ErrItemNotFound        = errors.New("collective payment item not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrDuplicateStudent    = errors.New("student already exists")
	ErrOrderNotFound       = errors.New("top-up order not found")
)

// LedgerRepository defines the data access surface of the wallet ledger.
// All balance and ledger mutation goes through an ExecuteInTransaction unit;
// no caller writes wallet or transaction rows outside of it.
type LedgerRepository interface {
	// ExecuteInTransaction runs fn inside a single atomic unit of work.
	// Every write fn performs commits or rolls back together.
	ExecuteInTransaction(fn func(LedgerRepository) error) error

	// Wallet operations
	CreateWalletIfAbsent(w *models.Wallet) error
	GetWalletByID(id uint) (*models.Wallet, error)
	GetWalletByStudentID(studentID uint) (*models.Wallet, error)
	// GetWalletForUpdate loads the wallet under a row lock, serializing
	// concurrent append-and-settle operations on the same wallet.
	GetWalletForUpdate(id uint) (*models.Wallet, error)
	SaveWallet(w *models.Wallet) error
	ListWallets(limit, offset int) ([]models.Wallet, error)

	// Ledger transaction operations
	CreateTransaction(t *models.WalletTransaction) error
	GetTransactionByID(id uint) (*models.WalletTransaction, error)
	// GetTransactionForUpdate loads the transaction under a row lock, so
	// concurrent voids of the same transaction serialize on the row itself.
	GetTransactionForUpdate(id uint) (*models.WalletTransaction, error)
	SaveTransaction(t *models.WalletTransaction) error
	ListWalletTransactions(walletID uint, limit, offset int) ([]models.WalletTransaction, error)
	// SumWalletAmount totals the non-voided amounts of one kind for a wallet.
	SumWalletAmount(walletID uint, kind string) (int64, error)
	// SumAmountByMethod totals non-voided amounts of one kind and method
	// across all wallets.
	SumAmountByMethod(kind, method string) (int64, error)

	// Collective payment operations
	CreateCollectivePayment(p *models.CollectivePayment) error
	GetCollectivePayment(id uint) (*models.CollectivePayment, error)
	ListCollectivePayments(limit, offset int) ([]models.CollectivePayment, error)
	CreatePaymentItems(items []*models.CollectivePaymentItem) error
	GetPaymentItem(id uint) (*models.CollectivePaymentItem, error)
	// PendingItemsForWallet returns the wallet's pending items oldest first.
	PendingItemsForWallet(walletID uint) ([]models.CollectivePaymentItem, error)
	ListPaymentItems(paymentID uint) ([]models.CollectivePaymentItem, error)
	SavePaymentItem(item *models.CollectivePaymentItem) error
	// RefreshCollectivePayment recomputes collected/outstanding amounts and
	// the derived status from the payment's items.
	RefreshCollectivePayment(id uint) (*models.CollectivePayment, error)

	// Institutional funds movements
	CreateWithdrawal(w *models.Withdrawal) error
	CreateDisbursement(d *models.Disbursement) error
	SumWithdrawals(status string) (int64, error)
	SumDisbursements(status, channel string) (int64, error)

	// Top-up orders
	CreateTopUpOrder(o *models.TopUpOrder) error
	GetTopUpOrderByOrderID(orderID string) (*models.TopUpOrder, error)
	SaveTopUpOrder(o *models.TopUpOrder) error

	// Student directory
	CreateStudent(s *models.Student) error
	GetStudentByID(id uint) (*models.Student, error)
	ListStudents(limit, offset int) ([]models.Student, error)
}
