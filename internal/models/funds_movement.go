package models

import "time"

// Withdrawal statuses
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusCompleted = "completed"
)

// Disbursement statuses and channels
const (
	DisbursementStatusPending  = "pending"
	DisbursementStatusApproved = "approved"

	ChannelCash     = "cash"
	ChannelTransfer = "transfer"
)

// Withdrawal records an internal bank -> cash movement of institutional
// funds. Completed withdrawals add to the cash pool and subtract from the
// bank pool in the aggregation projection; the combined total is unchanged.
type Withdrawal struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Status      string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Description string    `json:"description"`
	CreatedBy   string    `gorm:"size:64;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Disbursement records money leaving the institution through the external
// point-of-sale settlement, on either the cash or the transfer channel.
// Only approved disbursements are subtracted from the matching pool.
type Disbursement struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Channel     string    `gorm:"size:20;not null" json:"channel"`
	Status      string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Description string    `json:"description"`
	CreatedBy   string    `gorm:"size:64;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
