package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shophub/internal/domain/model"
	"shophub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentInput() usecase.ConfirmPaymentInput {
	return usecase.ConfirmPaymentInput{
		ID:           "PAY-123",
		Status:       "COMPLETED",
		UpdateTime:   "2026-03-01T12:00:00Z",
		EmailAddress: "payer@example.com",
	}
}

func TestConfirmPayment_Owner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 1}))

	out, err := f.orders.ConfirmPayment(ctx, u.ID, order.ID, paymentInput())
	require.NoError(t, err)

	assert.True(t, out.IsPaid)
	require.NotNil(t, out.PaidAt)
	assert.True(t, out.PaidAt.Equal(f.clock.t))
	assert.Equal(t, model.OrderStatusProcessing, out.Status)
	require.NotNil(t, out.PaymentResult)
	assert.Equal(t, "PAY-123", out.PaymentResult.ID)
	assert.Equal(t, "payer@example.com", out.PaymentResult.EmailAddress)
	// 採番済みの追跡番号は変わらない
	assert.Equal(t, order.TrackingNumber, out.TrackingNumber)
}

// 他人の注文は403で、何も変わらない
func TestConfirmPayment_NonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "buyer@example.com", model.RoleUser)
	other := f.seedUser(t, "other@example.com", model.RoleUser)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, owner.ID, orderInput(line{widget, 1}))

	_, err := f.orders.ConfirmPayment(ctx, other.ID, order.ID, paymentInput())
	assertHTTPError(t, err, http.StatusForbidden, "Not authorized to update this order")

	got, err := f.orders.GetOrder(ctx, owner.ID, model.RoleUser, order.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPaid)
	assert.Nil(t, got.PaidAt)
	assert.Nil(t, got.PaymentResult)
	assert.Equal(t, model.OrderStatusPending, got.Status)
}

func TestConfirmPayment_AlreadyPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 1}))

	_, err := f.orders.ConfirmPayment(ctx, u.ID, order.ID, paymentInput())
	require.NoError(t, err)

	_, err = f.orders.ConfirmPayment(ctx, u.ID, order.ID, paymentInput())
	assertHTTPError(t, err, http.StatusBadRequest, "Order is already paid")
}

func TestConfirmPayment_CancelledOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 1}))

	_, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, "cancelled")
	require.NoError(t, err)

	_, err = f.orders.ConfirmPayment(ctx, u.ID, order.ID, paymentInput())
	assertHTTPError(t, err, http.StatusBadRequest, "Order cannot be paid in its current status")
}

func TestConfirmPayment_InvalidInput(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)

	_, err := f.orders.ConfirmPayment(context.Background(), u.ID, 1, usecase.ConfirmPaymentInput{Status: "COMPLETED"})
	assertHTTPError(t, err, http.StatusBadRequest, "Invalid payment result")

	_, err = f.orders.ConfirmPayment(context.Background(), u.ID, 42, paymentInput())
	assertHTTPError(t, err, http.StatusNotFound, "Order not found")
}

func TestGetOrder_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "buyer@example.com", model.RoleUser)
	other := f.seedUser(t, "other@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, owner.ID, orderInput(line{widget, 1}))

	_, err := f.orders.GetOrder(ctx, other.ID, model.RoleUser, order.ID)
	assertHTTPError(t, err, http.StatusForbidden, "Not authorized to view this order")

	got, err := f.orders.GetOrder(ctx, admin.ID, model.RoleAdmin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.orders.GetOrder(ctx, owner.ID, model.RoleUser, order.ID+100)
	assertHTTPError(t, err, http.StatusNotFound, "Order not found")
}

// 新しい順、自分の注文だけ
func TestListMyOrders_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	other := f.seedUser(t, "other@example.com", model.RoleUser)
	widget := f.seedProduct(t, "Widget", "20.00", 50)

	var ids []int64
	for i := 0; i < 3; i++ {
		f.clock.t = f.clock.t.Add(time.Minute)
		ids = append(ids, f.placeOrder(t, u.ID, orderInput(line{widget, 1})).ID)
	}
	f.placeOrder(t, other.ID, orderInput(line{widget, 1}))

	page1, err := f.orders.ListMyOrders(ctx, u.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page1.Total)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Equal(t, 1, page1.CurrentPage)
	require.Len(t, page1.Orders, 2)
	assert.Equal(t, ids[2], page1.Orders[0].ID)
	assert.Equal(t, ids[1], page1.Orders[1].ID)
	assert.Len(t, page1.Orders[0].OrderItems, 1)

	page2, err := f.orders.ListMyOrders(ctx, u.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Orders, 1)
	assert.Equal(t, ids[0], page2.Orders[0].ID)

	_, err = f.orders.ListMyOrders(ctx, u.ID, 0, 10)
	assertHTTPError(t, err, http.StatusBadRequest, "invalid page")
}
