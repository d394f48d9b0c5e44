package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCartUsecase() (*usecase.CartUsecase, *CartItemRepoMock, *SessionCartRepoMock, *ProductRepoMock) {
	cartItems := new(CartItemRepoMock)
	sessionCarts := new(SessionCartRepoMock)
	products := new(ProductRepoMock)
	return usecase.NewCartUsecase(cartItems, sessionCarts, products), cartItems, sessionCarts, products
}

func memberOwner() usecase.Owner { return usecase.Owner{UserID: 1} }
func guestOwner() usecase.Owner  { return usecase.Owner{SessionToken: "tok-1"} }

func activeProduct(id int64, qty int64) model.Product {
	return model.Product{
		ID:       id,
		Title:    "Ceramic Mug",
		Price:    decimal.RequireFromString("450.00"),
		Qty:      qty,
		IsActive: true,
	}
}

func TestCartUsecase_AddToCart_InvalidInput(t *testing.T) {
	uc, _, _, _ := newCartUsecase()

	_, err := uc.AddToCart(context.Background(), memberOwner(), usecase.AddCartInput{ProductID: 0, Quantity: 1})
	assertErrContains(t, err, "invalid product_id")

	_, err = uc.AddToCart(context.Background(), memberOwner(), usecase.AddCartInput{ProductID: 1, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_AddToCart_Member_NewLine(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, _, products := newCartUsecase()

	products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	cartItems.On("FindByUserAndProduct", mock.Anything, int64(1), int64(10)).Return(model.CartItem{}, repo.ErrNotFound)
	cartItems.On("Upsert", mock.Anything, int64(1), int64(10), int64(2)).Return(nil)

	out, err := uc.AddToCart(ctx, memberOwner(), usecase.AddCartInput{ProductID: 10, Quantity: 2})
	assert.NoError(t, err)
	assert.True(t, out.Status)

	cartItems.AssertExpectations(t)
}

// 同一商品の2回目の追加は数量加算（新しい行は作らない）
func TestCartUsecase_AddToCart_Member_MergesSameProduct(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, _, products := newCartUsecase()

	products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	cartItems.On("FindByUserAndProduct", mock.Anything, int64(1), int64(10)).
		Return(model.CartItem{ID: 7, UserID: 1, ProductID: 10, Quantity: 2}, nil)
	cartItems.On("Upsert", mock.Anything, int64(1), int64(10), int64(3)).Return(nil)

	out, err := uc.AddToCart(ctx, memberOwner(), usecase.AddCartInput{ProductID: 10, Quantity: 3})
	assert.NoError(t, err)
	assert.True(t, out.Status)

	cartItems.AssertExpectations(t)
}

// 加算後の数量が在庫を超えるときは追加そのものを拒否する（切り詰めない）
func TestCartUsecase_AddToCart_Member_RejectsOverStock(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, _, products := newCartUsecase()

	products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	cartItems.On("FindByUserAndProduct", mock.Anything, int64(1), int64(10)).
		Return(model.CartItem{ID: 7, UserID: 1, ProductID: 10, Quantity: 4}, nil)

	out, err := uc.AddToCart(ctx, memberOwner(), usecase.AddCartInput{ProductID: 10, Quantity: 2})
	assert.NoError(t, err)
	assert.False(t, out.Status)
	assert.Equal(t, "Not enough stock available", out.Message)

	//拒否時は書き込みが起きない
	cartItems.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ゲストも同じ在庫ルール
func TestCartUsecase_AddToCart_Guest_RejectsOverStock(t *testing.T) {
	ctx := context.Background()
	uc, _, sessionCarts, products := newCartUsecase()

	products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 3), nil)
	sessionCarts.On("List", mock.Anything, "tok-1").
		Return([]repo.SessionCartLine{{ProductID: 10, Quantity: 2}}, nil)

	out, err := uc.AddToCart(ctx, guestOwner(), usecase.AddCartInput{ProductID: 10, Quantity: 2})
	assert.NoError(t, err)
	assert.False(t, out.Status)

	sessionCarts.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_Guest_Success(t *testing.T) {
	ctx := context.Background()
	uc, _, sessionCarts, products := newCartUsecase()

	products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 3), nil)
	sessionCarts.On("List", mock.Anything, "tok-1").Return([]repo.SessionCartLine{}, nil)
	sessionCarts.On("Add", mock.Anything, "tok-1", int64(10), int64(2)).Return(nil)

	out, err := uc.AddToCart(ctx, guestOwner(), usecase.AddCartInput{ProductID: 10, Quantity: 2})
	assert.NoError(t, err)
	assert.True(t, out.Status)

	sessionCarts.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	uc, _, _, products := newCartUsecase()

	p := activeProduct(10, 3)
	p.IsActive = false
	products.On("FindByID", mock.Anything, int64(10)).Return(p, nil)

	_, err := uc.AddToCart(ctx, memberOwner(), usecase.AddCartInput{ProductID: 10, Quantity: 1})
	assertErrContains(t, err, "invalid product")
}

// 無い明細の削除は失敗ではなく status:false
func TestCartUsecase_RemoveFromCart_Member_NotFound(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, _, _ := newCartUsecase()

	cartItems.On("DeleteByUserAndProduct", mock.Anything, int64(1), int64(10)).Return(repo.ErrNotFound)

	out, err := uc.RemoveFromCart(ctx, memberOwner(), 10)
	assert.NoError(t, err)
	assert.False(t, out.Status)
	assert.Equal(t, "Product not found in cart", out.Message)
}

func TestCartUsecase_RemoveFromCart_Guest_NotFound(t *testing.T) {
	ctx := context.Background()
	uc, _, sessionCarts, _ := newCartUsecase()

	sessionCarts.On("Remove", mock.Anything, "tok-1", int64(10)).Return(false, nil)

	out, err := uc.RemoveFromCart(ctx, guestOwner(), 10)
	assert.NoError(t, err)
	assert.False(t, out.Status)
}

func TestCartUsecase_RemoveFromCart_Member_Success(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, _, _ := newCartUsecase()

	cartItems.On("DeleteByUserAndProduct", mock.Anything, int64(1), int64(10)).Return(nil)

	out, err := uc.RemoveFromCart(ctx, memberOwner(), 10)
	assert.NoError(t, err)
	assert.True(t, out.Status)
}

func TestCartUsecase_GetCart_Member(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, _, products := newCartUsecase()

	cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 2},
		{ID: 2, UserID: 1, ProductID: 11, Quantity: 1},
	}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	products.On("FindByID", mock.Anything, int64(11)).Return(model.Product{
		ID: 11, Title: "Kettle", Price: decimal.RequireFromString("1200.00"), Qty: 3, IsActive: true,
	}, nil)

	out, err := uc.GetCart(ctx, memberOwner())
	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	//450*2 + 1200*1
	assert.True(t, out.Total.Equal(decimal.RequireFromString("2100.00")))
}

// 消えた商品はカート表示から落ちるだけ
func TestCartUsecase_GetCart_SkipsGoneProducts(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, _, products := newCartUsecase()

	cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 2},
		{ID: 2, UserID: 1, ProductID: 99, Quantity: 1},
	}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.GetCart(ctx, memberOwner())
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(10), out.Items[0].ProductID)
}

func TestCartUsecase_ClearCart(t *testing.T) {
	ctx := context.Background()
	uc, cartItems, sessionCarts, _ := newCartUsecase()

	cartItems.On("ClearByUserID", mock.Anything, int64(1)).Return(nil)
	sessionCarts.On("Clear", mock.Anything, "tok-1").Return(nil)

	assert.NoError(t, uc.ClearCart(ctx, memberOwner()))
	assert.NoError(t, uc.ClearCart(ctx, guestOwner()))

	cartItems.AssertExpectations(t)
	sessionCarts.AssertExpectations(t)
}
