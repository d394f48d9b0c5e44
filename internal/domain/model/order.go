package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文ヘッダ。作成後は不変（状態は明細側が持つ）。
type Order struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64           `gorm:"not null;index" json:"user_id"`
	AddressID  int64           `gorm:"not null" json:"address_id"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
