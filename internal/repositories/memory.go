package repositories

import (
	"sort"
	"sync"
	"time"

	"campuspay/internal/models"
)

// MemoryLedgerRepository is an in-memory LedgerRepository used by the service
// tests. It mirrors the Postgres implementation's semantics: unique references,
// FIFO pending items, and transactional rollback via state snapshots.
type MemoryLedgerRepository struct {
	mu   sync.Mutex
	txMu sync.Mutex

	wallets     map[uint]models.Wallet
	byStudent   map[uint]uint
	txns        map[uint]models.WalletTransaction
	refs        map[string]uint
	payments    map[uint]models.CollectivePayment
	items       map[uint]models.CollectivePaymentItem
	withdrawals map[uint]models.Withdrawal
	disbursed   map[uint]models.Disbursement
	orders      map[string]models.TopUpOrder
	students    map[uint]models.Student

	nextID uint
}

func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{
		wallets:     make(map[uint]models.Wallet),
		byStudent:   make(map[uint]uint),
		txns:        make(map[uint]models.WalletTransaction),
		refs:        make(map[string]uint),
		payments:    make(map[uint]models.CollectivePayment),
		items:       make(map[uint]models.CollectivePaymentItem),
		withdrawals: make(map[uint]models.Withdrawal),
		disbursed:   make(map[uint]models.Disbursement),
		orders:      make(map[string]models.TopUpOrder),
		students:    make(map[uint]models.Student),
		nextID:      1,
	}
}

func (m *MemoryLedgerRepository) allocID() uint {
	id := m.nextID
	m.nextID++
	return id
}

type memorySnapshot struct {
	wallets     map[uint]models.Wallet
	byStudent   map[uint]uint
	txns        map[uint]models.WalletTransaction
	refs        map[string]uint
	payments    map[uint]models.CollectivePayment
	items       map[uint]models.CollectivePaymentItem
	withdrawals map[uint]models.Withdrawal
	disbursed   map[uint]models.Disbursement
	orders      map[string]models.TopUpOrder
	students    map[uint]models.Student
	nextID      uint
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *MemoryLedgerRepository) snapshot() memorySnapshot {
	return memorySnapshot{
		wallets:     cloneMap(m.wallets),
		byStudent:   cloneMap(m.byStudent),
		txns:        cloneMap(m.txns),
		refs:        cloneMap(m.refs),
		payments:    cloneMap(m.payments),
		items:       cloneMap(m.items),
		withdrawals: cloneMap(m.withdrawals),
		disbursed:   cloneMap(m.disbursed),
		orders:      cloneMap(m.orders),
		students:    cloneMap(m.students),
		nextID:      m.nextID,
	}
}

func (m *MemoryLedgerRepository) restore(s memorySnapshot) {
	m.wallets = s.wallets
	m.byStudent = s.byStudent
	m.txns = s.txns
	m.refs = s.refs
	m.payments = s.payments
	m.items = s.items
	m.withdrawals = s.withdrawals
	m.disbursed = s.disbursed
	m.orders = s.orders
	m.students = s.students
	m.nextID = s.nextID
}

// ExecuteInTransaction serializes units of work and rolls all state back when
// fn returns an error, matching the database implementation's atomicity.
func (m *MemoryLedgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := m.snapshot()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.restore(snap)
		m.mu.Unlock()
		return err
	}
	return nil
}

// Wallet operations

func (m *MemoryLedgerRepository) CreateWalletIfAbsent(w *models.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byStudent[w.StudentID]; ok {
		*w = m.wallets[id]
		return nil
	}
	w.ID = m.allocID()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	m.wallets[w.ID] = *w
	m.byStudent[w.StudentID] = w.ID
	return nil
}

func (m *MemoryLedgerRepository) GetWalletByID(id uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[id]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return &w, nil
}

func (m *MemoryLedgerRepository) GetWalletByStudentID(studentID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byStudent[studentID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	w := m.wallets[id]
	return &w, nil
}

func (m *MemoryLedgerRepository) GetWalletForUpdate(id uint) (*models.Wallet, error) {
	return m.GetWalletByID(id)
}

func (m *MemoryLedgerRepository) SaveWallet(w *models.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[w.ID]; !ok {
		return ErrWalletNotFound
	}
	w.UpdatedAt = time.Now()
	m.wallets[w.ID] = *w
	return nil
}

func (m *MemoryLedgerRepository) ListWallets(limit, offset int) ([]models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallets := make([]models.Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		wallets = append(wallets, w)
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return paginate(wallets, limit, offset), nil
}

// Ledger transaction operations

func (m *MemoryLedgerRepository) CreateTransaction(t *models.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.refs[t.Reference]; ok {
		return ErrDuplicateReference
	}
	t.ID = m.allocID()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.txns[t.ID] = *t
	m.refs[t.Reference] = t.ID
	return nil
}

func (m *MemoryLedgerRepository) GetTransactionByID(id uint) (*models.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return &t, nil
}

func (m *MemoryLedgerRepository) GetTransactionForUpdate(id uint) (*models.WalletTransaction, error) {
	return m.GetTransactionByID(id)
}

func (m *MemoryLedgerRepository) SaveTransaction(t *models.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[t.ID]; !ok {
		return ErrTransactionNotFound
	}
	m.txns[t.ID] = *t
	return nil
}

func (m *MemoryLedgerRepository) ListWalletTransactions(walletID uint, limit, offset int) ([]models.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var txns []models.WalletTransaction
	for _, t := range m.txns {
		if t.WalletID == walletID {
			txns = append(txns, t)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].ID > txns[j].ID })
	return paginate(txns, limit, offset), nil
}

func (m *MemoryLedgerRepository) SumWalletAmount(walletID uint, kind string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, t := range m.txns {
		if t.WalletID == walletID && t.Kind == kind && !t.Voided {
			total += t.Amount
		}
	}
	return total, nil
}

func (m *MemoryLedgerRepository) SumAmountByMethod(kind, method string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, t := range m.txns {
		if t.Kind == kind && t.Method == method && !t.Voided {
			total += t.Amount
		}
	}
	return total, nil
}

// Collective payment operations

func (m *MemoryLedgerRepository) CreateCollectivePayment(p *models.CollectivePayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.allocID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.payments[p.ID] = *p
	return nil
}

func (m *MemoryLedgerRepository) GetCollectivePayment(id uint) (*models.CollectivePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &p, nil
}

func (m *MemoryLedgerRepository) ListCollectivePayments(limit, offset int) ([]models.CollectivePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payments := make([]models.CollectivePayment, 0, len(m.payments))
	for _, p := range m.payments {
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID > payments[j].ID })
	return paginate(payments, limit, offset), nil
}

func (m *MemoryLedgerRepository) CreatePaymentItems(items []*models.CollectivePaymentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		item.ID = m.allocID()
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now()
		}
		item.UpdatedAt = item.CreatedAt
		m.items[item.ID] = *item
	}
	return nil
}

func (m *MemoryLedgerRepository) GetPaymentItem(id uint) (*models.CollectivePaymentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

func (m *MemoryLedgerRepository) PendingItemsForWallet(walletID uint) ([]models.CollectivePaymentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.CollectivePaymentItem
	for _, item := range m.items {
		if item.WalletID == walletID && item.Status == models.ItemStatusPending {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (m *MemoryLedgerRepository) ListPaymentItems(paymentID uint) ([]models.CollectivePaymentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []models.CollectivePaymentItem
	for _, item := range m.items {
		if item.CollectivePaymentID == paymentID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryLedgerRepository) SavePaymentItem(item *models.CollectivePaymentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return ErrItemNotFound
	}
	item.UpdatedAt = time.Now()
	m.items[item.ID] = *item
	return nil
}

func (m *MemoryLedgerRepository) RefreshCollectivePayment(id uint) (*models.CollectivePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	var collected, outstanding int64
	for _, item := range m.items {
		if item.CollectivePaymentID != id {
			continue
		}
		switch item.Status {
		case models.ItemStatusPaid:
			collected += item.Amount
		case models.ItemStatusPending:
			outstanding += item.Amount
		}
	}
	p.CollectedAmount = collected
	p.OutstandingAmount = outstanding
	if outstanding == 0 {
		p.Status = models.PaymentStatusCompleted
	} else {
		p.Status = models.PaymentStatusActive
	}
	p.UpdatedAt = time.Now()
	m.payments[id] = p
	return &p, nil
}

// Institutional funds movements

func (m *MemoryLedgerRepository) CreateWithdrawal(w *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.ID = m.allocID()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	m.withdrawals[w.ID] = *w
	return nil
}

func (m *MemoryLedgerRepository) CreateDisbursement(d *models.Disbursement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.allocID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.disbursed[d.ID] = *d
	return nil
}

func (m *MemoryLedgerRepository) SumWithdrawals(status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, w := range m.withdrawals {
		if w.Status == status {
			total += w.Amount
		}
	}
	return total, nil
}

func (m *MemoryLedgerRepository) SumDisbursements(status, channel string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, d := range m.disbursed {
		if d.Status == status && d.Channel == channel {
			total += d.Amount
		}
	}
	return total, nil
}

// Top-up orders

func (m *MemoryLedgerRepository) CreateTopUpOrder(o *models.TopUpOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.OrderID]; ok {
		return ErrDuplicateReference
	}
	o.ID = m.allocID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.OrderID] = *o
	return nil
}

func (m *MemoryLedgerRepository) GetTopUpOrderByOrderID(orderID string) (*models.TopUpOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (m *MemoryLedgerRepository) SaveTopUpOrder(o *models.TopUpOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.OrderID]; !ok {
		return ErrOrderNotFound
	}
	o.UpdatedAt = time.Now()
	m.orders[o.OrderID] = *o
	return nil
}

// Student directory

func (m *MemoryLedgerRepository) CreateStudent(s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.students {
		if existing.NIS == s.NIS {
			return ErrDuplicateStudent
		}
	}
	s.ID = m.allocID()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.students[s.ID] = *s
	return nil
}

func (m *MemoryLedgerRepository) GetStudentByID(id uint) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, ErrStudentNotFound
	}
	return &s, nil
}

func (m *MemoryLedgerRepository) ListStudents(limit, offset int) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	students := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return paginate(students, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
