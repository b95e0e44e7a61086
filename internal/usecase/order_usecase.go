package usecase

import (
	"context"
	"errors"
	"net/http"

	"shophub/internal/domain/model"
	"shophub/internal/metrics"
	repo "shophub/internal/repository"

	"github.com/sirupsen/logrus"
)

type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	validator  OrderValidator
	clock      Clock
	log        logrus.FieldLogger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	validator OrderValidator,
	clock Clock,
	log logrus.FieldLogger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		validator:  validator,
		clock:      clock,
		log:        log,
	}
}

// PUT /orders/:id/payのbody（決済サービスの結果をそのまま記録する）
type ConfirmPaymentInput struct {
	ID           string
	Status       string
	UpdateTime   string
	EmailAddress string
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, internalError(err)
	}

	outs, err := loadOrderOutputs(ctx, u.orderItems, orders)
	if err != nil {
		return OrderListOutput{}, err
	}

	return OrderListOutput{
		Orders:      outs,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
		Total:       total,
	}, nil
}

// 本人か管理者だけ見られる
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, role model.Role, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return OrderOutput{}, internalError(err)
	}
	if o.UserID != userID && role != model.RoleAdmin {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "Not authorized to view this order")
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, internalError(err)
	}
	return toOrderOutput(o, items), nil
}

// 支払い確認。pendingかつ未払いの自分の注文だけ
func (u *OrderUsecase) ConfirmPayment(ctx context.Context, userID int64, orderID int64, in ConfirmPaymentInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.validator.ValidatePayment(in); err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return internalError(err)
		}

		// 他人の注文は一切変更しない
		if o.UserID != userID {
			return NewHTTPError(http.StatusForbidden, "Not authorized to update this order")
		}
		if o.IsPaid {
			return NewHTTPError(http.StatusBadRequest, "Order is already paid")
		}
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusBadRequest, "Order cannot be paid in its current status")
		}

		err = r.Orders().MarkPaid(ctx, orderID, repo.OrderPaymentUpdate{
			PaidAt: u.clock.Now(),
			Result: model.PaymentResult{
				ID:           in.ID,
				Status:       in.Status,
				UpdateTime:   in.UpdateTime,
				EmailAddress: in.EmailAddress,
			},
		})
		// 条件付きUPDATEが0件 = 直前に状態が変わった
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusConflict, "Order was updated concurrently")
		}
		if err != nil {
			return internalError(err)
		}

		updated, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return internalError(err)
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return internalError(err)
		}
		out = toOrderOutput(updated, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	metrics.OrderStatusTransitions.WithLabelValues(string(model.OrderStatusPending), string(model.OrderStatusProcessing)).Inc()
	u.log.WithFields(logrus.Fields{"order_id": orderID, "user_id": userID}).Info("order paid")
	return out, nil
}

func loadOrderOutputs(ctx context.Context, items repo.OrderItemRepository, orders []model.Order) ([]OrderOutput, error) {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		its, err := items.ListByOrderID(ctx, o.ID)
		if err != nil {
			return []OrderOutput{}, internalError(err)
		}
		outs = append(outs, toOrderOutput(o, its))
	}
	return outs, nil
}
