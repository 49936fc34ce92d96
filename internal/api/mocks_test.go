package api

import (
	"context"

	"bestea-be/internal/cart"
	"bestea-be/internal/coupon"
	"bestea-be/internal/order"
	"bestea-be/internal/payment"
	"bestea-be/internal/product"

	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*order.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) list(args mock.Arguments) (*order.ListResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ListResult), args.Error(1)
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, in order.PlaceOrderInput) (*order.Order, error) {
	return m.order(m.Called(ctx, in))
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) ListOrders(ctx context.Context, opts order.ListOptions) (*order.ListResult, error) {
	return m.list(m.Called(ctx, opts))
}

func (m *MockOrderService) ListAllOrders(ctx context.Context, opts order.ListOptions) (*order.ListResult, error) {
	return m.list(m.Called(ctx, opts))
}

func (m *MockOrderService) AdvanceStatus(ctx context.Context, id string, status string, note *string) (*order.Order, error) {
	return m.order(m.Called(ctx, id, status, note))
}

func (m *MockOrderService) Cancel(ctx context.Context, id string, reason *string) (*order.Order, error) {
	return m.order(m.Called(ctx, id, reason))
}

func (m *MockOrderService) RecordPayment(ctx context.Context, id string, res payment.Result) (*order.Order, error) {
	return m.order(m.Called(ctx, id, res))
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, opts product.ListOptions) (*product.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.ListResult), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) state(args mock.Arguments) (*cart.State, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.State), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context) (*cart.State, error) {
	return m.state(m.Called(ctx))
}

func (m *MockCartService) AddItem(ctx context.Context, in cart.AddItemInput) (*cart.State, error) {
	return m.state(m.Called(ctx, in))
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, key string, qty int) (*cart.State, error) {
	return m.state(m.Called(ctx, key, qty))
}

func (m *MockCartService) RemoveItem(ctx context.Context, key string) (*cart.State, error) {
	return m.state(m.Called(ctx, key))
}

func (m *MockCartService) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, code string) (*cart.State, error) {
	return m.state(m.Called(ctx, code))
}

func (m *MockCartService) RemoveCoupon(ctx context.Context) (*cart.State, error) {
	return m.state(m.Called(ctx))
}

type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Validate(ctx context.Context, code string, subtotal int64) (*coupon.Result, error) {
	args := m.Called(ctx, code, subtotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Result), args.Error(1)
}
