package models

import "time"

// Collective payment statuses
const (
	PaymentStatusActive    = "active"
	PaymentStatusCompleted = "completed"
)

// Collective payment item statuses
const (
	ItemStatusPending = "pending"
	ItemStatusPaid    = "paid"
)

// CollectivePayment is a shared billing obligation split into one item per
// student wallet. CollectedAmount/OutstandingAmount are derived from the
// items and refreshed after every settlement pass.
type CollectivePayment struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	Title             string    `gorm:"size:120;not null" json:"title"`
	AmountPerStudent  int64     `gorm:"not null" json:"amount_per_student"`
	CollectedAmount   int64     `gorm:"not null;default:0" json:"collected_amount"`
	OutstandingAmount int64     `gorm:"not null;default:0" json:"outstanding_amount"`
	Status            string    `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedBy         string    `gorm:"size:64;not null" json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Items []CollectivePaymentItem `gorm:"foreignKey:CollectivePaymentID" json:"items,omitempty"`
}

// CollectivePaymentItem is one wallet's share of a collective payment.
// Status only ever moves pending -> paid, and only when a settlement debit
// was successfully appended; TransactionID then links the satisfying debit.
type CollectivePaymentItem struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	CollectivePaymentID uint       `gorm:"index;not null" json:"collective_payment_id"`
	WalletID            uint       `gorm:"index;not null" json:"wallet_id"`
	Amount              int64      `gorm:"not null" json:"amount"`
	Status              string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	TransactionID       *uint      `gorm:"uniqueIndex" json:"transaction_id,omitempty"`
	FailureReason       string     `json:"failure_reason,omitempty"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (CollectivePaymentItem) TableName() string {
	return "collective_payment_items"
}
