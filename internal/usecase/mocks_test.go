package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func assertErrContains(t *testing.T, err error, substr string) {
	t.Helper()
	assert.Error(t, err)
	if err != nil {
		assert.True(t, strings.Contains(err.Error(), substr),
			"error %q should contain %q", err.Error(), substr)
	}
}

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) Reserve(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) Release(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error) {
	args := m.Called(ctx, userID, productID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error {
	args := m.Called(ctx, userID, productID, addQty)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByUserAndProduct(ctx context.Context, userID int64, productID int64) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *CartItemRepoMock) ClearByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type SessionCartRepoMock struct{ mock.Mock }

func (m *SessionCartRepoMock) Add(ctx context.Context, token string, productID int64, qty int64) error {
	args := m.Called(ctx, token, productID, qty)
	return args.Error(0)
}

func (m *SessionCartRepoMock) Remove(ctx context.Context, token string, productID int64) (bool, error) {
	args := m.Called(ctx, token, productID)
	return args.Bool(0), args.Error(1)
}

func (m *SessionCartRepoMock) List(ctx context.Context, token string) ([]repo.SessionCartLine, error) {
	args := m.Called(ctx, token)
	lines, _ := args.Get(0).([]repo.SessionCartLine)
	return lines, args.Error(1)
}

func (m *SessionCartRepoMock) Clear(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) UpdateStatus(ctx context.Context, orderItemID int64, status model.OrderItemStatus) error {
	args := m.Called(ctx, orderItemID, status)
	return args.Error(0)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) FindLatestByUserID(ctx context.Context, userID int64) (model.Address, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) UpdateOrderNotes(ctx context.Context, addressID int64, notes string) error {
	args := m.Called(ctx, addressID, notes)
	return args.Error(0)
}

type CityRepoMock struct{ mock.Mock }

func (m *CityRepoMock) FindByID(ctx context.Context, cityID int64) (model.City, error) {
	args := m.Called(ctx, cityID)
	c, _ := args.Get(0).(model.City)
	return c, args.Error(1)
}

func (m *CityRepoMock) List(ctx context.Context) ([]model.City, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.City)
	return cs, args.Error(1)
}

type DeliveryTypeRepoMock struct{ mock.Mock }

func (m *DeliveryTypeRepoMock) FindByCode(ctx context.Context, code model.DeliveryTypeCode) (model.DeliveryType, error) {
	args := m.Called(ctx, code)
	dt, _ := args.Get(0).(model.DeliveryType)
	return dt, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MailEnqueuerMock struct{ mock.Mock }

func (m *MailEnqueuerMock) Enqueue(ctx context.Context, to string, subject string, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// =====================
// Txのスタブ
// =====================

type txReposStub struct {
	orders        *OrderRepoMock
	orderItems    *OrderItemRepoMock
	cartItems     *CartItemRepoMock
	inventory     *InventoryRepoMock
	products      *ProductRepoMock
	addresses     *AddressRepoMock
	cities        *CityRepoMock
	deliveryTypes *DeliveryTypeRepoMock
}

func (s *txReposStub) Orders() repo.OrderRepository               { return s.orders }
func (s *txReposStub) OrderItems() repo.OrderItemRepository       { return s.orderItems }
func (s *txReposStub) CartItems() repo.CartItemRepository         { return s.cartItems }
func (s *txReposStub) Inventory() repo.InventoryRepository        { return s.inventory }
func (s *txReposStub) Products() repo.ProductRepository           { return s.products }
func (s *txReposStub) Addresses() repo.AddressRepository          { return s.addresses }
func (s *txReposStub) Cities() repo.CityRepository                { return s.cities }
func (s *txReposStub) DeliveryTypes() repo.DeliveryTypeRepository { return s.deliveryTypes }

// fnがerrorを返したらrollback相当（commitErrでcommit失敗も再現できる）
type txManagerStub struct {
	repos     *txReposStub
	commitErr error
}

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := fn(m.repos); err != nil {
		return err
	}
	return m.commitErr
}

func newTxStub() (*txManagerStub, *txReposStub) {
	repos := &txReposStub{
		orders:        new(OrderRepoMock),
		orderItems:    new(OrderItemRepoMock),
		cartItems:     new(CartItemRepoMock),
		inventory:     new(InventoryRepoMock),
		products:      new(ProductRepoMock),
		addresses:     new(AddressRepoMock),
		cities:        new(CityRepoMock),
		deliveryTypes: new(DeliveryTypeRepoMock),
	}
	return &txManagerStub{repos: repos}, repos
}
