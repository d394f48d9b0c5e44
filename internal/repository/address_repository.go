package repository

import (
	"context"

	"app/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが最後に使った住所（id降順の先頭）
	FindLatestByUserID(ctx context.Context, userID int64) (model.Address, error)

	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	//注文メモだけ差し替える
	UpdateOrderNotes(ctx context.Context, addressID int64, notes string) error
}
