package repository

import "context"

// 在庫台帳。予約＝チェックと減算を1つの原子的な操作で行う。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算。足りなければfalse（状態は変わらない）
	Reserve(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	Release(ctx context.Context, productID int64, qty int64) error
}
