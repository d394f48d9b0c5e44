package model

import "time"

// 配送先住所のスナップショット。
// 注文は作成時点の住所IDを参照する。
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	FirstName string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(50);not null" json:"last_name"`

	CityID int64 `gorm:"not null" json:"city_id"`

	//番地など
	LineOne string `gorm:"type:varchar(255);not null" json:"line_one"`
	LineTwo string `gorm:"type:varchar(255);not null" json:"line_two"`

	//郵便番号（5桁）
	PostalCode string `gorm:"type:varchar(5);not null" json:"postal_code"`

	//携帯番号（10桁）
	Mobile string `gorm:"type:varchar(10);not null" json:"mobile"`

	//注文メモ（任意）
	OrderNotes string `gorm:"type:text" json:"order_notes"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
