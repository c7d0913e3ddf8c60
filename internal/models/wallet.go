package models

import "time"

// Wallet is the per-student running balance. It is only ever mutated through
// ledger appends and corrections; Balance must always equal the sum of the
// wallet's non-voided credits minus its non-voided debits.
type Wallet struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	StudentID uint      `gorm:"uniqueIndex;not null" json:"student_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
