package repository

import "context"

// ゲストカートの1行
type SessionCartLine struct {
	ProductID int64
	Quantity  int64
}

// ゲスト（未ログイン）カート。セッショントークンをキーにした揮発ストア。
// Addは同一商品を数量加算でマージする。
type SessionCartRepository interface {
	Add(ctx context.Context, token string, productID int64, qty int64) error
	Remove(ctx context.Context, token string, productID int64) (bool, error)
	List(ctx context.Context, token string) ([]SessionCartLine, error)
	Clear(ctx context.Context, token string) error
}
