package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"shophub/internal/domain/model"
	"shophub/internal/metrics"
	repo "shophub/internal/repository"

	"github.com/sirupsen/logrus"
)

type AdminOrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	clock      Clock
	log        logrus.FieldLogger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	clock Clock,
	log logrus.FieldLogger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		clock:      clock,
		log:        log,
	}
}

type AdminListOrdersInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 全注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminListOrdersInput) (OrderListOutput, error) {
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	status := strings.TrimSpace(in.Status)
	if status != "" {
		if _, ok := model.ParseOrderStatus(status); !ok {
			return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
	}

	orders, total, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: status,
		UserID: in.UserID,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return OrderListOutput{}, internalError(err)
	}

	outs, err := loadOrderOutputs(ctx, u.orderItems, orders)
	if err != nil {
		return OrderListOutput{}, err
	}

	return OrderListOutput{
		Orders:      outs,
		TotalPages:  totalPages(total, in.Limit),
		CurrentPage: in.Page,
		Total:       total,
	}, nil
}

type statusAudit struct {
	Status      model.OrderStatus `json:"status"`
	IsDelivered bool              `json:"isDelivered"`
}

// ステータス更新。遷移表にない変更は400、同じステータスは何もしない
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, orderID int64, rawStatus string) (OrderOutput, error) {
	if actorUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	next, ok := model.ParseOrderStatus(strings.TrimSpace(rawStatus))
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		out     OrderOutput
		from    model.OrderStatus
		changed bool
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同時に来た更新はここで直列化する
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return internalError(err)
		}
		from = o.Status

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return internalError(err)
		}

		if o.Status == next {
			out = toOrderOutput(o, items)
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}

		var deliveredAt *time.Time
		if next == model.OrderStatusDelivered {
			now := u.clock.Now()
			deliveredAt = &now
		}

		// 読んだstatusのままのときだけ書く。負けた側はTxごと戻す
		if err := r.Orders().UpdateStatus(ctx, orderID, o.Status, next, deliveredAt); err != nil {
			if errors.Is(err, repo.ErrStatusConflict) {
				return NewHTTPError(http.StatusConflict, "Order status was changed by another request")
			}
			return internalError(err)
		}

		// 出荷前のキャンセルは在庫を戻す
		if next == model.OrderStatusCancelled && o.Status.IsRestockable() {
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil && !errors.Is(err, repo.ErrNotFound) {
					return internalError(err)
				}
			}
		}

		// 監査ログ
		before, _ := json.Marshal(statusAudit{Status: o.Status, IsDelivered: o.IsDelivered})
		after, _ := json.Marshal(statusAudit{Status: next, IsDelivered: o.IsDelivered || deliveredAt != nil})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return internalError(err)
		}

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return internalError(err)
		}
		out = toOrderOutput(updated, items)
		changed = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if changed {
		metrics.OrderStatusTransitions.WithLabelValues(string(from), string(next)).Inc()
		u.log.WithFields(logrus.Fields{
			"order_id": orderID,
			"actor_id": actorUserID,
			"from":     from,
			"to":       next,
		}).Info("order status changed")
	}
	return out, nil
}
