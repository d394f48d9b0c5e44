package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/payhere"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func checkoutPayCfg() payhere.Config {
	return payhere.Config{
		MerchantID: "1211149",
		Secret:     "MySecret",
		Currency:   "LKR",
		Sandbox:    true,
	}
}

type checkoutFixture struct {
	uc     *usecase.CheckoutUsecase
	txm    *txManagerStub
	repos  *txReposStub
	users  *UserRepoMock
	cities *CityRepoMock
	mail   *MailEnqueuerMock
}

func newCheckoutFixture() *checkoutFixture {
	txm, repos := newTxStub()
	users := new(UserRepoMock)
	cities := new(CityRepoMock)
	mail := new(MailEnqueuerMock)

	uc := usecase.NewCheckoutUsecase(txm, users, cities, mail, checkoutPayCfg(), "Colombo", zap.NewNop())
	return &checkoutFixture{uc: uc, txm: txm, repos: repos, users: users, cities: cities, mail: mail}
}

func checkoutUser() *model.User {
	return &model.User{
		ID:        1,
		FirstName: "Nimal",
		LastName:  "Perera",
		Email:     "nimal@example.com",
	}
}

func savedAddress() model.Address {
	return model.Address{
		ID:         5,
		UserID:     1,
		FirstName:  "Nimal",
		LastName:   "Perera",
		CityID:     2,
		LineOne:    "12 Galle Road",
		LineTwo:    "Apt 3",
		PostalCode: "00300",
		Mobile:     "0771234567",
	}
}

func newAddressInput() usecase.CheckoutInput {
	return usecase.CheckoutInput{
		FirstName:  "Nimal",
		LastName:   "Perera",
		CityID:     2,
		LineOne:    "12 Galle Road",
		LineTwo:    "Apt 3",
		PostalCode: "00300",
		Mobile:     "0771234567",
	}
}

func TestCheckout_SessionExpired(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.uc.Checkout(context.Background(), 0, usecase.CheckoutInput{UseCurrentAddress: true})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 401, he.Status)
	assert.Equal(t, "Session expired! Please log in again", he.Message)
}

func TestCheckout_Success_WithinHub(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(savedAddress(), nil)
	f.repos.cities.On("FindByID", mock.Anything, int64(2)).Return(model.City{ID: 2, Name: "Colombo"}, nil)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 2},
	}, nil)
	f.repos.deliveryTypes.On("FindByCode", mock.Anything, model.DeliveryWithinHub).
		Return(model.DeliveryType{ID: 1, Code: model.DeliveryWithinHub, Price: decimal.RequireFromString("350.00")}, nil)

	f.repos.products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(10), int64(2)).Return(true, nil)

	//(450 + 350) * 2 = 1600.00
	f.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 && o.AddressID == 5 && o.TotalPrice.Equal(decimal.RequireFromString("1600.00"))
	})).Return(int64(7), nil)

	f.repos.orderItems.On("CreateBulk", mock.Anything, int64(7), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 &&
			items[0].ProductID == 10 &&
			items[0].ProductTitleSnapshot == "Ceramic Mug" &&
			items[0].UnitPriceSnapshot.Equal(decimal.RequireFromString("450.00")) &&
			items[0].Quantity == 2 &&
			items[0].Status == model.OrderItemStatusProcessing &&
			items[0].Rating == 0
	})).Return(nil)

	f.repos.cartItems.On("ClearByUserID", mock.Anything, int64(1)).Return(nil)
	f.mail.On("Enqueue", mock.Anything, "nimal@example.com", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Checkout(ctx, 1, usecase.CheckoutInput{UseCurrentAddress: true})
	assert.NoError(t, err)
	assert.True(t, out.Status)
	assert.Equal(t, int64(7), out.OrderID)

	//支払いペイロードは確定値と同じ入力から決定的に作られる
	if assert.NotNil(t, out.PayHere) {
		assert.Equal(t, "#0007", out.PayHere.OrderID)
		assert.Equal(t, "1600.00", out.PayHere.Amount)
		assert.Equal(t, "LKR", out.PayHere.Currency)
		assert.Equal(t, "Colombo", out.PayHere.City)
		assert.Equal(t, "0771234567", out.PayHere.Phone)
		assert.Equal(t,
			payhere.Signature("1211149", "#0007", "1600.00", "LKR", "MySecret"),
			out.PayHere.Hash)
	}

	f.repos.orders.AssertExpectations(t)
	f.repos.orderItems.AssertExpectations(t)
	f.repos.cartItems.AssertExpectations(t)
	f.mail.AssertExpectations(t)
}

// ハブ都市の外は配送料金が変わる
func TestCheckout_OutsideHubDeliveryFee(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	addr := savedAddress()
	addr.CityID = 3

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(addr, nil)
	f.repos.cities.On("FindByID", mock.Anything, int64(3)).Return(model.City{ID: 3, Name: "Kandy"}, nil)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 1},
	}, nil)
	f.repos.deliveryTypes.On("FindByCode", mock.Anything, model.DeliveryOutsideHub).
		Return(model.DeliveryType{ID: 2, Code: model.DeliveryOutsideHub, Price: decimal.RequireFromString("500.00")}, nil)

	f.repos.products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(10), int64(1)).Return(true, nil)

	//(450 + 500) * 1 = 950.00
	f.repos.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalPrice.Equal(decimal.RequireFromString("950.00"))
	})).Return(int64(8), nil)
	f.repos.orderItems.On("CreateBulk", mock.Anything, int64(8), mock.Anything).Return(nil)
	f.repos.cartItems.On("ClearByUserID", mock.Anything, int64(1)).Return(nil)
	f.mail.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Checkout(ctx, 1, usecase.CheckoutInput{UseCurrentAddress: true})
	assert.NoError(t, err)
	assert.Equal(t, "950.00", out.PayHere.Amount)

	f.repos.orders.AssertExpectations(t)
}

// 1行でも在庫が足りなければ注文は作られずカートも残る
func TestCheckout_InsufficientStock_NothingPersisted(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(savedAddress(), nil)
	f.repos.cities.On("FindByID", mock.Anything, int64(2)).Return(model.City{ID: 2, Name: "Colombo"}, nil)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 2},
		{ID: 2, UserID: 1, ProductID: 11, Quantity: 1},
	}, nil)
	f.repos.deliveryTypes.On("FindByCode", mock.Anything, model.DeliveryWithinHub).
		Return(model.DeliveryType{ID: 1, Price: decimal.RequireFromString("350.00")}, nil)

	f.repos.products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	f.repos.products.On("FindByID", mock.Anything, int64(11)).Return(activeProduct(11, 5), nil)

	f.repos.inventory.On("Reserve", mock.Anything, int64(10), int64(2)).Return(true, nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(11), int64(1)).Return(false, nil)

	_, err := f.uc.Checkout(ctx, 1, usecase.CheckoutInput{UseCurrentAddress: true})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Contains(t, he.Message, "Insufficient stock")

	//txごとrollbackされるので注文もカートクリアも無い
	f.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repos.cartItems.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything)
	f.mail.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(savedAddress(), nil)
	f.repos.cities.On("FindByID", mock.Anything, int64(2)).Return(model.City{ID: 2, Name: "Colombo"}, nil)
	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{}, nil)

	_, err := f.uc.Checkout(ctx, 1, usecase.CheckoutInput{UseCurrentAddress: true})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, "Your cart is empty", he.Message)
}

// 新規住所の検証エラーは何も書き込む前に止まる
func TestCheckout_NewAddressValidationStopsEarly(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)

	in := newAddressInput()
	in.Mobile = "12345"

	_, err := f.uc.Checkout(ctx, 1, in)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid mobile number", he.Message)

	f.repos.addresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repos.inventory.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_NewAddress_InvalidCity(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.cities.On("FindByID", mock.Anything, int64(2)).Return(model.City{}, repo.ErrNotFound)

	_, err := f.uc.Checkout(ctx, 1, newAddressInput())

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid city name", he.Message)
}

func TestCheckout_CurrentAddressMissing(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(model.Address{}, repo.ErrNotFound)

	_, err := f.uc.Checkout(ctx, 1, usecase.CheckoutInput{UseCurrentAddress: true})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Contains(t, he.Message, "Please add a new address")
}

// 既存住所でも注文メモだけは今回の入力で差し替わる
func TestCheckout_CurrentAddressOrderNotesPatched(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(savedAddress(), nil)
	f.repos.addresses.On("UpdateOrderNotes", mock.Anything, int64(5), "Leave at the gate").Return(nil)
	f.repos.cities.On("FindByID", mock.Anything, int64(2)).Return(model.City{ID: 2, Name: "Colombo"}, nil)

	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 1},
	}, nil)
	f.repos.deliveryTypes.On("FindByCode", mock.Anything, model.DeliveryWithinHub).
		Return(model.DeliveryType{ID: 1, Price: decimal.RequireFromString("350.00")}, nil)
	f.repos.products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(10), int64(1)).Return(true, nil)
	f.repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(9), nil)
	f.repos.orderItems.On("CreateBulk", mock.Anything, int64(9), mock.Anything).Return(nil)
	f.repos.cartItems.On("ClearByUserID", mock.Anything, int64(1)).Return(nil)
	f.mail.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Checkout(ctx, 1, usecase.CheckoutInput{
		UseCurrentAddress: true,
		OrderNotes:        "Leave at the gate",
	})
	assert.NoError(t, err)
	assert.True(t, out.Status)

	f.repos.addresses.AssertExpectations(t)
}

// メール投入の失敗はチェックアウトを失敗にしない
func TestCheckout_MailEnqueueFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()

	f.users.On("FindByID", mock.Anything, int64(1)).Return(checkoutUser(), nil)
	f.repos.addresses.On("FindLatestByUserID", mock.Anything, int64(1)).Return(savedAddress(), nil)
	f.repos.cities.On("FindByID", mock.Anything, int64(2)).Return(model.City{ID: 2, Name: "Colombo"}, nil)
	f.repos.cartItems.On("ListByUserID", mock.Anything, int64(1)).Return([]model.CartItem{
		{ID: 1, UserID: 1, ProductID: 10, Quantity: 1},
	}, nil)
	f.repos.deliveryTypes.On("FindByCode", mock.Anything, model.DeliveryWithinHub).
		Return(model.DeliveryType{ID: 1, Price: decimal.RequireFromString("350.00")}, nil)
	f.repos.products.On("FindByID", mock.Anything, int64(10)).Return(activeProduct(10, 5), nil)
	f.repos.inventory.On("Reserve", mock.Anything, int64(10), int64(1)).Return(true, nil)
	f.repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(11), nil)
	f.repos.orderItems.On("CreateBulk", mock.Anything, int64(11), mock.Anything).Return(nil)
	f.repos.cartItems.On("ClearByUserID", mock.Anything, int64(1)).Return(nil)

	f.mail.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	out, err := f.uc.Checkout(ctx, 1, usecase.CheckoutInput{UseCurrentAddress: true})
	assert.NoError(t, err)
	assert.True(t, out.Status)
	assert.Equal(t, int64(11), out.OrderID)
}

func TestCheckout_ListCities(t *testing.T) {
	f := newCheckoutFixture()

	f.cities.On("List", mock.Anything).Return([]model.City{
		{ID: 1, Name: "Colombo"},
		{ID: 2, Name: "Kandy"},
	}, nil)

	cities, err := f.uc.ListCities(context.Background())
	assert.NoError(t, err)
	assert.Len(t, cities, 2)
}
