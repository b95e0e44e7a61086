package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"shophub/internal/domain/model"
	infraRepo "shophub/internal/infra/repository"
	repo "shophub/internal/repository"
	"shophub/internal/usecase"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUpdateStatus_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 1}))

	for _, next := range []string{"processing", "shipped"} {
		out, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatus(next), out.Status)
		assert.False(t, out.IsDelivered)
		assert.Nil(t, out.DeliveredAt)
	}

	out, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, out.Status)
	assert.True(t, out.IsDelivered)
	require.NotNil(t, out.DeliveredAt)
	assert.True(t, out.DeliveredAt.Equal(f.clock.t))
	assert.Equal(t, order.TrackingNumber, out.TrackingNumber)

	// 変更ごとに監査ログ1件
	logs, err := f.audit.List(ctx, usecase.ListAuditLogsInput{Page: 1, Limit: 50, ResourceType: "order"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), logs.Total)
	for _, l := range logs.Logs {
		assert.Equal(t, model.AuditActionUpdateOrderStatus, l.Action)
		assert.Equal(t, admin.ID, l.ActorUserID)
		assert.Equal(t, order.ID, l.ResourceID)
	}
}

func TestAdminUpdateStatus_InvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 1}))

	// 飛び越し
	_, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, "delivered")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid status transition")

	_, err = f.admin.UpdateStatus(ctx, admin.ID, order.ID, "lost")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid status")

	_, err = f.admin.UpdateStatus(ctx, admin.ID, order.ID, "processing")
	require.NoError(t, err)

	// 後戻り
	_, err = f.admin.UpdateStatus(ctx, admin.ID, order.ID, "pending")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid status transition")

	_, err = f.admin.UpdateStatus(ctx, admin.ID, order.ID+100, "shipped")
	assertHTTPError(t, err, http.StatusNotFound, "Order not found")
}

// 同じステータスは何もしない（監査ログも無し）
func TestAdminUpdateStatus_SameStatusNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 1}))

	out, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, out.Status)
	assert.Zero(t, f.count(t, &model.AuditLog{}))
}

// 出荷前のキャンセルは在庫を戻す
func TestAdminUpdateStatus_CancelRestocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 2}))
	require.Equal(t, int64(3), f.stockOf(t, widget.ID))

	out, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, out.Status)
	assert.Equal(t, int64(5), f.stockOf(t, widget.ID))

	// 終端からは動かない
	_, err = f.admin.UpdateStatus(ctx, admin.ID, order.ID, "processing")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid status transition")
}

// 出荷後のキャンセルは在庫を戻さない
func TestAdminUpdateStatus_CancelAfterShipKeepsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 2}))

	for _, next := range []string{"processing", "shipped", "cancelled"} {
		_, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, next)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), f.stockOf(t, widget.ID))
}

func TestAdminListOrders_FilterAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	other := f.seedUser(t, "other@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 50)

	first := f.placeOrder(t, u.ID, orderInput(line{widget, 1}))
	f.placeOrder(t, other.ID, orderInput(line{widget, 1}))
	_, err := f.admin.UpdateStatus(ctx, admin.ID, first.ID, "processing")
	require.NoError(t, err)

	all, err := f.admin.List(ctx, usecase.AdminListOrdersInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 1, all.TotalPages)

	processing, err := f.admin.List(ctx, usecase.AdminListOrdersInput{Page: 1, Limit: 20, Status: "processing"})
	require.NoError(t, err)
	require.Len(t, processing.Orders, 1)
	assert.Equal(t, first.ID, processing.Orders[0].ID)

	mine, err := f.admin.List(ctx, usecase.AdminListOrdersInput{Page: 1, Limit: 20, UserID: &other.ID})
	require.NoError(t, err)
	require.Len(t, mine.Orders, 1)
	assert.Equal(t, other.ID, mine.Orders[0].User)

	_, err = f.admin.List(ctx, usecase.AdminListOrdersInput{Page: 1, Limit: 20, Status: "lost"})
	assertHTTPError(t, err, http.StatusBadRequest, "")
}

// =====================
// 古いstatusを読んでしまった並行リクエストの再現
// =====================

type staleOrderRepo struct {
	repo.OrderRepository
	stale model.Order
}

func (r staleOrderRepo) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.stale, nil
}

type staleTxRepos struct {
	repo.TxRepos
	stale model.Order
}

func (r staleTxRepos) Orders() repo.OrderRepository {
	return staleOrderRepo{OrderRepository: r.TxRepos.Orders(), stale: r.stale}
}

type staleTxManager struct {
	inner repo.TransactionManager
	stale model.Order
}

func (m staleTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return m.inner.WithinTx(ctx, func(r repo.TxRepos) error {
		return fn(staleTxRepos{TxRepos: r, stale: m.stale})
	})
}

func (f *fixture) adminReading(stale model.Order) *usecase.AdminOrderUsecase {
	log, _ := logtest.NewNullLogger()
	return usecase.NewAdminOrderUsecase(
		staleTxManager{inner: infraRepo.NewTxManagerGorm(f.db), stale: stale},
		infraRepo.NewOrderGormRepository(f.db),
		infraRepo.NewOrderItemGormRepository(f.db),
		f.clock,
		log,
	)
}

// 二重キャンセルでも在庫は1回しか戻らない
func TestAdminUpdateStatus_StaleCancelDoesNotRestockTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 2}))

	var pending model.Order
	require.NoError(t, f.db.First(&pending, order.ID).Error)
	require.Equal(t, model.OrderStatusPending, pending.Status)

	_, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, int64(5), f.stockOf(t, widget.ID))

	_, err = f.adminReading(pending).UpdateStatus(ctx, admin.ID, order.ID, "cancelled")
	assertHTTPError(t, err, http.StatusConflict, "Order status was changed by another request")

	assert.Equal(t, int64(5), f.stockOf(t, widget.ID))
	assert.Equal(t, int64(1), f.count(t, &model.AuditLog{}))
}

// 配送済みの注文を古いpendingの読みでキャンセルできない
func TestAdminUpdateStatus_StaleReadCannotSkipTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "buyer@example.com", model.RoleUser)
	admin := f.seedUser(t, "admin@example.com", model.RoleAdmin)
	widget := f.seedProduct(t, "Widget", "20.00", 5)
	order := f.placeOrder(t, u.ID, orderInput(line{widget, 2}))

	var pending model.Order
	require.NoError(t, f.db.First(&pending, order.ID).Error)

	for _, next := range []string{"processing", "shipped", "delivered"} {
		_, err := f.admin.UpdateStatus(ctx, admin.ID, order.ID, next)
		require.NoError(t, err)
	}

	_, err := f.adminReading(pending).UpdateStatus(ctx, admin.ID, order.ID, "cancelled")
	assertHTTPError(t, err, http.StatusConflict, "")

	var got model.Order
	require.NoError(t, f.db.First(&got, order.ID).Error)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
	assert.True(t, got.IsDelivered)
	assert.Equal(t, int64(3), f.stockOf(t, widget.ID))
}
