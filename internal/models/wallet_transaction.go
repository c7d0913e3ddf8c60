package models

import "time"

// Transaction kinds
const (
	KindCredit = "credit"
	KindDebit  = "debit"
)

// Payment method tags
const (
	MethodCash      = "cash"
	MethodTransfer  = "transfer"
	MethodAdminVoid = "admin-void"
)

// WalletTransaction is one immutable row of the append-only ledger.
// Amount, Kind and Method never change after creation; only Voided may
// transition false -> true. BalanceAfter is a point-in-time snapshot taken
// when the row was appended, not a value that is ever recomputed.
type WalletTransaction struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	WalletID          uint       `gorm:"index;not null" json:"wallet_id"`
	Kind              string     `gorm:"size:10;not null" json:"kind"`
	Amount            int64      `gorm:"not null" json:"amount"`
	BalanceAfter      int64      `gorm:"not null" json:"balance_after"`
	Description       string     `json:"description"`
	Reference         string     `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	Method            string     `gorm:"size:20;not null" json:"method"`
	Voided            bool       `gorm:"not null;default:false" json:"voided"`
	ReplacesReference string     `gorm:"size:64" json:"replaces_reference,omitempty"`
	VoidedAt          *time.Time `json:"voided_at,omitempty"`
	VoidedBy          string     `gorm:"size:64" json:"voided_by,omitempty"`
	CreatedBy         string     `gorm:"size:64;not null" json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
