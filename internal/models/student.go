package models

import "time"

// Student is the directory entry a wallet belongs to. The wallet core trusts
// the student reference; directory details beyond the foreign key are owned
// by the admissions side of the platform.
type Student struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	NIS       string    `gorm:"uniqueIndex;size:32;not null" json:"nis"`
	ClassName string    `gorm:"size:40" json:"class_name"`
	Dormitory string    `gorm:"size:40" json:"dormitory"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
