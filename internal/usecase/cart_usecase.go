package usecase

import (
	"context"
	"net/http"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// Owner はカート操作の主体。
// ログイン済みならUserID、ゲストならSessionTokenを持つ。
// セッションの中身を暗黙に読むのではなく、必ず引数で渡す。
type Owner struct {
	UserID       int64
	SessionToken string
}

func (o Owner) IsGuest() bool {
	return o.UserID <= 0
}

// CartUsecase は会員カート（DB）とゲストカート（セッション）の両方を扱う。
// どちらの形でも (owner, product) につき明細は1行で、2回目の追加は数量加算。
type CartUsecase struct {
	cartItems    repo.CartItemRepository
	sessionCarts repo.SessionCartRepository
	products     repo.ProductRepository
}

func NewCartUsecase(
	cartItems repo.CartItemRepository,
	sessionCarts repo.SessionCartRepository,
	products repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartItems:    cartItems,
		sessionCarts: sessionCarts,
		products:     products,
	}
}

type CartLineResponse struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// 追加/削除の結果。StatusがfalseでもHTTPとしては200で返す。
type CartActionOutput struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 加算後の数量が現在在庫を超える場合は、追加そのものを拒否する
// （超過分だけ切り詰める方式は採らない。両方の変種で同じ扱い）。
func (u *CartUsecase) AddToCart(ctx context.Context, owner Owner, in AddCartInput) (CartActionOutput, error) {
	if in.ProductID <= 0 {
		return CartActionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartActionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.products.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartActionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartActionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartActionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	//既存数量を調べる
	existingQty, err := u.existingQuantity(ctx, owner, in.ProductID)
	if err != nil {
		return CartActionOutput{}, NewHTTPError(http.StatusInternalServerError, "cart error")
	}

	newQty := existingQty + in.Quantity
	if newQty > p.Qty {
		return CartActionOutput{
			Status:  false,
			Message: "Not enough stock available",
		}, nil
	}

	if owner.IsGuest() {
		err = u.sessionCarts.Add(ctx, owner.SessionToken, in.ProductID, in.Quantity)
	} else {
		err = u.cartItems.Upsert(ctx, owner.UserID, in.ProductID, in.Quantity)
	}
	if err != nil {
		return CartActionOutput{}, NewHTTPError(http.StatusInternalServerError, "cart error")
	}

	return CartActionOutput{Status: true, Message: "Product added to cart"}, nil
}

// RemoveFromCart は明細を削除する。
// 明細が無いのは致命エラーではなく、status:false で知らせるだけ。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, owner Owner, productID int64) (CartActionOutput, error) {
	if productID <= 0 {
		return CartActionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	if owner.IsGuest() {
		removed, err := u.sessionCarts.Remove(ctx, owner.SessionToken, productID)
		if err != nil {
			return CartActionOutput{}, NewHTTPError(http.StatusInternalServerError, "cart error")
		}
		if !removed {
			return CartActionOutput{Status: false, Message: "Product not found in cart"}, nil
		}
		return CartActionOutput{Status: true, Message: "Product removed from cart"}, nil
	}

	err := u.cartItems.DeleteByUserAndProduct(ctx, owner.UserID, productID)
	if err == repo.ErrNotFound {
		return CartActionOutput{Status: false, Message: "Product not found in cart"}, nil
	}
	if err != nil {
		return CartActionOutput{}, NewHTTPError(http.StatusInternalServerError, "cart error")
	}

	return CartActionOutput{Status: true, Message: "Product removed from cart"}, nil
}

// GetCart はカートの中身と合計を返す。
func (u *CartUsecase) GetCart(ctx context.Context, owner Owner) (CartResponse, error) {
	lines, err := u.listLines(ctx, owner)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart error")
	}

	respItems := make([]CartLineResponse, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		p, err := u.products.FindByID(ctx, line.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		respItems = append(respItems, CartLineResponse{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})

		total = total.Add(p.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}

	return CartResponse{Items: respItems, Total: total}, nil
}

// ClearCart はカートを空にする。
func (u *CartUsecase) ClearCart(ctx context.Context, owner Owner) error {
	if owner.IsGuest() {
		if err := u.sessionCarts.Clear(ctx, owner.SessionToken); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "cart error")
		}
		return nil
	}
	if err := u.cartItems.ClearByUserID(ctx, owner.UserID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "cart error")
	}
	return nil
}

func (u *CartUsecase) existingQuantity(ctx context.Context, owner Owner, productID int64) (int64, error) {
	if owner.IsGuest() {
		lines, err := u.sessionCarts.List(ctx, owner.SessionToken)
		if err != nil {
			return 0, err
		}
		for _, line := range lines {
			if line.ProductID == productID {
				return line.Quantity, nil
			}
		}
		return 0, nil
	}

	item, err := u.cartItems.FindByUserAndProduct(ctx, owner.UserID, productID)
	if err == repo.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return item.Quantity, nil
}

func (u *CartUsecase) listLines(ctx context.Context, owner Owner) ([]repo.SessionCartLine, error) {
	if owner.IsGuest() {
		return u.sessionCarts.List(ctx, owner.SessionToken)
	}

	items, err := u.cartItems.ListByUserID(ctx, owner.UserID)
	if err != nil {
		return nil, err
	}

	lines := make([]repo.SessionCartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, repo.SessionCartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines, nil
}
