package usecase

import (
	"context"

	repo "app/internal/repository"

	"go.uber.org/zap"
)

// ReconcileUsecase はログイン成功時にゲストカートを会員カートへ統合する。
//
// 方針は「行ごとの成否は独立、永続化は一括」。
// 在庫に収まらない行はログに残してスキップするだけで、
// マージ全体は止めない。生き残った行はひとつのトランザクションで
// まとめてコミットし、コミットが成功したときだけゲストカートを消す。
// コミットが失敗したらゲストカートは残るので、次のログインで再試行される。
type ReconcileUsecase struct {
	tx           repo.TransactionManager
	sessionCarts repo.SessionCartRepository
	logger       *zap.Logger
}

func NewReconcileUsecase(
	tx repo.TransactionManager,
	sessionCarts repo.SessionCartRepository,
	logger *zap.Logger,
) *ReconcileUsecase {
	return &ReconcileUsecase{
		tx:           tx,
		sessionCarts: sessionCarts,
		logger:       logger,
	}
}

// マージ1回分の集計
type ReconcileResult struct {
	Merged  int
	Skipped int
}

// MergeSessionCart はゲストカートの各行を会員カートへ取り込む。
// ゲストカートが空なら何もしない。
func (u *ReconcileUsecase) MergeSessionCart(ctx context.Context, userID int64, sessionToken string) (ReconcileResult, error) {
	var result ReconcileResult

	if userID <= 0 || sessionToken == "" {
		return result, nil
	}

	lines, err := u.sessionCarts.List(ctx, sessionToken)
	if err != nil {
		return result, err
	}
	if len(lines) == 0 {
		return result, nil
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, line := range lines {
			//キャッシュされた値は信用せず、商品を取り直す
			p, err := r.Products().FindByID(ctx, line.ProductID)
			if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
				u.logger.Info("cart merge: product gone, skipping line",
					zap.Int64("user_id", userID),
					zap.Int64("product_id", line.ProductID),
				)
				result.Skipped++
				continue
			}
			if err != nil {
				return err
			}

			existing, err := r.CartItems().FindByUserAndProduct(ctx, userID, line.ProductID)
			if err != nil && err != repo.ErrNotFound {
				return err
			}

			var existingQty int64 = 0
			if err == nil {
				existingQty = existing.Quantity
			}

			//在庫に収まらない行はスキップ（マージ全体は止めない）
			candidateQty := existingQty + line.Quantity
			if candidateQty > p.Qty {
				u.logger.Info("cart merge: insufficient stock, skipping line",
					zap.Int64("user_id", userID),
					zap.Int64("product_id", line.ProductID),
					zap.Int64("available", p.Qty),
					zap.Int64("requested", candidateQty),
				)
				result.Skipped++
				continue
			}

			if existingQty > 0 {
				if err := r.CartItems().UpdateQuantity(ctx, existing.ID, candidateQty); err != nil {
					return err
				}
			} else {
				if err := r.CartItems().Upsert(ctx, userID, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
			result.Merged++
		}
		return nil
	})

	if err != nil {
		//コミットできなかったのでゲストカートは触らない（次回ログインで再試行）
		u.logger.Warn("cart merge: commit failed, keeping session cart",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return ReconcileResult{}, err
	}

	//コミット成功後だけゲストカートを消す
	if err := u.sessionCarts.Clear(ctx, sessionToken); err != nil {
		u.logger.Warn("cart merge: failed to clear session cart",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	return result, nil
}
