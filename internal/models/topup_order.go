package models

import "time"

// Top-up order statuses
const (
	TopUpStatusPending = "pending"
	TopUpStatusSettled = "settled"
	TopUpStatusFailed  = "failed"
)

// TopUpOrder tracks a bank-transfer top up from charge creation to the
// gateway's settlement notification. The wallet credit is only appended when
// the gateway reports settlement; OrderID doubles as the credit's reference,
// so a replayed notification can never credit twice.
type TopUpOrder struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	OrderID     string    `gorm:"uniqueIndex;size:64;not null" json:"order_id"`
	WalletID    uint      `gorm:"index;not null" json:"wallet_id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Status      string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	SnapToken   string    `gorm:"size:128" json:"snap_token,omitempty"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	CreatedBy   string    `gorm:"size:64;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (TopUpOrder) TableName() string {
	return "top_up_orders"
}
