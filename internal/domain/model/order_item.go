package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItemStatus string

const (
	OrderItemStatusProcessing OrderItemStatus = "PROCESSING"
	OrderItemStatusShipped    OrderItemStatus = "SHIPPED"
	OrderItemStatusDelivered  OrderItemStatus = "DELIVERED"
	OrderItemStatusCanceled   OrderItemStatus = "CANCELED"
)

// 注文明細。購入時点の商品名と単価を必ずスナップショットする。
// 作成後に変わるのはStatusとRatingだけ。
type OrderItem struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              int64           `gorm:"not null;index" json:"order_id"`
	ProductID            int64           `gorm:"not null;index" json:"product_id"`
	ProductTitleSnapshot string          `gorm:"type:varchar(255);not null" json:"product_title_snapshot"`
	UnitPriceSnapshot    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price_snapshot"`
	Quantity             int64           `gorm:"not null" json:"quantity"`
	DeliveryTypeID       int64           `gorm:"not null" json:"delivery_type_id"`
	Status               OrderItemStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Rating               int             `gorm:"not null;default:0" json:"rating"`
	CreatedAt            time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
