package model

import "github.com/shopspring/decimal"

type DeliveryTypeCode string

const (
	//ハブ都市内への配送
	DeliveryWithinHub DeliveryTypeCode = "WITHIN_HUB"

	//ハブ都市外への配送
	DeliveryOutsideHub DeliveryTypeCode = "OUTSIDE_HUB"
)

// 配送料金の段階。Priceは1個あたりの料金。
type DeliveryType struct {
	ID    int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code  DeliveryTypeCode `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	Name  string           `gorm:"type:varchar(100);not null" json:"name"`
	Price decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
}
