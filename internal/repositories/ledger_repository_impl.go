package repositories

import (
	"errors"
	"fmt"

	"campuspay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

// Wallet operations

func (r *ledgerRepository) CreateWalletIfAbsent(w *models.Wallet) error {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		DoNothing: true,
	}).Create(w)
	if result.Error != nil {
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	if w.ID == 0 {
		// Lost the race; another caller inserted the row first.
		existing, err := r.GetWalletByStudentID(w.StudentID)
		if err != nil {
			return err
		}
		*w = *existing
	}
	return nil
}

func (r *ledgerRepository) GetWalletByID(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *ledgerRepository) GetWalletByStudentID(studentID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("student_id = ?", studentID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *ledgerRepository) GetWalletForUpdate(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *ledgerRepository) SaveWallet(w *models.Wallet) error {
	if err := r.db.Save(w).Error; err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListWallets(limit, offset int) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := r.db.Order("id").Limit(limit).Offset(offset).Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// Ledger transaction operations

func (r *ledgerRepository) CreateTransaction(t *models.WalletTransaction) error {
	if err := r.db.Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetTransactionByID(id uint) (*models.WalletTransaction, error) {
	var t models.WalletTransaction
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (r *ledgerRepository) GetTransactionForUpdate(id uint) (*models.WalletTransaction, error) {
	var t models.WalletTransaction
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return &t, nil
}

func (r *ledgerRepository) SaveTransaction(t *models.WalletTransaction) error {
	if err := r.db.Save(t).Error; err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListWalletTransactions(walletID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var txns []models.WalletTransaction
	err := r.db.
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

func (r *ledgerRepository) SumWalletAmount(walletID uint, kind string) (int64, error) {
	var total int64
	err := r.db.Model(&models.WalletTransaction{}).
		Where("wallet_id = ? AND kind = ? AND voided = false", walletID, kind).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum wallet amount: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) SumAmountByMethod(kind, method string) (int64, error) {
	var total int64
	err := r.db.Model(&models.WalletTransaction{}).
		Where("kind = ? AND method = ? AND voided = false", kind, method).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum amount by method: %w", err)
	}
	return total, nil
}

// Collective payment operations

func (r *ledgerRepository) CreateCollectivePayment(p *models.CollectivePayment) error {
	if err := r.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create collective payment: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetCollectivePayment(id uint) (*models.CollectivePayment, error) {
	var p models.CollectivePayment
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get collective payment: %w", err)
	}
	return &p, nil
}

func (r *ledgerRepository) ListCollectivePayments(limit, offset int) ([]models.CollectivePayment, error) {
	var payments []models.CollectivePayment
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list collective payments: %w", err)
	}
	return payments, nil
}

func (r *ledgerRepository) CreatePaymentItems(items []*models.CollectivePaymentItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.Create(items).Error; err != nil {
		return fmt.Errorf("failed to create payment items: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetPaymentItem(id uint) (*models.CollectivePaymentItem, error) {
	var item models.CollectivePaymentItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get payment item: %w", err)
	}
	return &item, nil
}

func (r *ledgerRepository) PendingItemsForWallet(walletID uint) ([]models.CollectivePaymentItem, error) {
	var items []models.CollectivePaymentItem
	err := r.db.
		Where("wallet_id = ? AND status = ?", walletID, models.ItemStatusPending).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending items: %w", err)
	}
	return items, nil
}

func (r *ledgerRepository) ListPaymentItems(paymentID uint) ([]models.CollectivePaymentItem, error) {
	var items []models.CollectivePaymentItem
	err := r.db.
		Where("collective_payment_id = ?", paymentID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment items: %w", err)
	}
	return items, nil
}

func (r *ledgerRepository) SavePaymentItem(item *models.CollectivePaymentItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save payment item: %w", err)
	}
	return nil
}

func (r *ledgerRepository) RefreshCollectivePayment(id uint) (*models.CollectivePayment, error) {
	payment, err := r.GetCollectivePayment(id)
	if err != nil {
		return nil, err
	}

	var collected, outstanding int64
	err = r.db.Model(&models.CollectivePaymentItem{}).
		Where("collective_payment_id = ? AND status = ?", id, models.ItemStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&collected).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum collected amount: %w", err)
	}
	err = r.db.Model(&models.CollectivePaymentItem{}).
		Where("collective_payment_id = ? AND status = ?", id, models.ItemStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&outstanding).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum outstanding amount: %w", err)
	}

	payment.CollectedAmount = collected
	payment.OutstandingAmount = outstanding
	if outstanding == 0 {
		payment.Status = models.PaymentStatusCompleted
	} else {
		payment.Status = models.PaymentStatusActive
	}
	if err := r.db.Save(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to save collective payment: %w", err)
	}
	return payment, nil
}

// Institutional funds movements

func (r *ledgerRepository) CreateWithdrawal(w *models.Withdrawal) error {
	if err := r.db.Create(w).Error; err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

func (r *ledgerRepository) CreateDisbursement(d *models.Disbursement) error {
	if err := r.db.Create(d).Error; err != nil {
		return fmt.Errorf("failed to create disbursement: %w", err)
	}
	return nil
}

func (r *ledgerRepository) SumWithdrawals(status string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Withdrawal{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) SumDisbursements(status, channel string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Disbursement{}).
		Where("status = ? AND channel = ?", status, channel).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum disbursements: %w", err)
	}
	return total, nil
}

// Top-up orders

func (r *ledgerRepository) CreateTopUpOrder(o *models.TopUpOrder) error {
	if err := r.db.Create(o).Error; err != nil {
		return fmt.Errorf("failed to create top-up order: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetTopUpOrderByOrderID(orderID string) (*models.TopUpOrder, error) {
	var o models.TopUpOrder
	if err := r.db.Where("order_id = ?", orderID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get top-up order: %w", err)
	}
	return &o, nil
}

func (r *ledgerRepository) SaveTopUpOrder(o *models.TopUpOrder) error {
	if err := r.db.Save(o).Error; err != nil {
		return fmt.Errorf("failed to save top-up order: %w", err)
	}
	return nil
}

// Student directory

func (r *ledgerRepository) CreateStudent(s *models.Student) error {
	if err := r.db.Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateStudent
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetStudentByID(id uint) (*models.Student, error) {
	var s models.Student
	if err := r.db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

func (r *ledgerRepository) ListStudents(limit, offset int) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.Order("id").Limit(limit).Offset(offset).Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}
