package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shophub/internal/domain/model"
	"shophub/internal/metrics"
	repo "shophub/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	checkoutLockTTL      = 30 * time.Second
	maxIdempotencyKeyLen = 255
)

// 同じユーザーのチェックアウトを同時に1つだけにする
type CheckoutLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key string, token string) error
}

// 入力チェック（validatorパッケージが実装）
type OrderValidator interface {
	ValidatePlaceOrder(in PlaceOrderInput) error
	ValidatePayment(in ConfirmPaymentInput) error
}

type PlaceOrderItemInput struct {
	ProductID int64
	// エラーメッセージ用。価格や名前の保存には使わない
	Name     string
	Quantity int64
}

type PlaceOrderInput struct {
	Items           []PlaceOrderItemInput
	ShippingAddress model.ShippingAddress
	PaymentMethod   string
	ItemsPrice      *decimal.Decimal
	TaxPrice        *decimal.Decimal
	ShippingPrice   *decimal.Decimal
	TotalPrice      *decimal.Decimal
	Notes           string
	IdempotencyKey  string
}

type CheckoutUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	lock       CheckoutLocker
	validator  OrderValidator
	clock      Clock
	log        logrus.FieldLogger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	lock CheckoutLocker,
	validator OrderValidator,
	clock Clock,
	log logrus.FieldLogger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		lock:       lock,
		validator:  validator,
		clock:      clock,
		log:        log,
	}
}

// 注文確定。created=falseは同じ冪等キーの既存注文を返したとき
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (out OrderOutput, created bool, err error) {
	if userID <= 0 {
		return OrderOutput{}, false, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validator.ValidatePlaceOrder(in); err != nil {
		return OrderOutput{}, false, u.fail("validation", err)
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return OrderOutput{}, false, u.fail("validation", NewHTTPError(http.StatusBadRequest, "invalid idempotency key"))
	}

	lockKey := fmt.Sprintf("user:%d", userID)
	token, ok, err := u.lock.TryLock(ctx, lockKey, checkoutLockTTL)
	if err != nil {
		return OrderOutput{}, false, u.fail("internal", internalError(err))
	}
	if !ok {
		return OrderOutput{}, false, u.fail("conflict", NewHTTPError(http.StatusConflict, "checkout already in progress"))
	}
	defer func() {
		if uerr := u.lock.Unlock(context.WithoutCancel(ctx), lockKey, token); uerr != nil {
			u.log.WithError(uerr).WithField("user_id", userID).Warn("failed to release checkout lock")
		}
	}()

	var (
		idemKey     *string
		requestHash string
	)
	if key != "" {
		idemKey = &key
		requestHash = requestFingerprint(in)
		if existing, found, err := u.findExisting(ctx, userID, key, requestHash); err != nil {
			return OrderOutput{}, false, u.fail(failureReason(err), err)
		} else if found {
			return existing, false, nil
		}
	}

	now := u.clock.Now()
	demand := collectDemand(in.Items)

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		catalog, err := verifyStock(ctx, r.Products(), demand)
		if err != nil {
			return err
		}

		totals := priceOrder(in.Items, catalog)
		if !totals.Matches(submittedTotals(in)) {
			return NewHTTPError(http.StatusBadRequest, "Order totals do not match current prices")
		}

		if err := decrementStock(ctx, r.Inventory(), demand, catalog); err != nil {
			return err
		}

		order, items, err := writeOrder(ctx, r, userID, in, catalog, totals, idemKey, requestHash, now)
		if err != nil {
			return err
		}

		if err := r.Carts().ClearByUserID(ctx, userID); err != nil {
			return internalError(err)
		}

		out = toOrderOutput(order, items)
		return nil
	})
	if err != nil {
		// 別インスタンスが同じキーで先に作っていた場合
		if idemKey != nil {
			if existing, found, ferr := u.findExisting(ctx, userID, key, requestHash); ferr != nil {
				if he, isHTTP := AsHTTPError(ferr); isHTTP && he.Status == http.StatusUnprocessableEntity {
					return OrderOutput{}, false, u.fail(failureReason(ferr), ferr)
				}
			} else if found {
				return existing, false, nil
			}
		}
		if _, ok := AsHTTPError(err); !ok {
			err = internalError(err)
		}
		return OrderOutput{}, false, u.fail(failureReason(err), err)
	}

	metrics.OrdersCreated.Inc()
	metrics.OrderAmount.Observe(out.TotalPrice.InexactFloat64())
	u.log.WithFields(logrus.Fields{
		"order_id":        out.ID,
		"user_id":         userID,
		"tracking_number": out.TrackingNumber,
		"total":           out.TotalPrice.StringFixed(2),
	}).Info("order placed")

	return out, true, nil
}

// 同じキーで内容が違う再送は422。ハッシュの無い古い注文はそのまま返す
func (u *CheckoutUsecase) findExisting(ctx context.Context, userID int64, key string, requestHash string) (OrderOutput, bool, error) {
	o, found, err := u.orders.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return OrderOutput{}, false, internalError(err)
	}
	if !found {
		return OrderOutput{}, false, nil
	}
	if o.RequestHash != "" && o.RequestHash != requestHash {
		return OrderOutput{}, false, NewHTTPError(http.StatusUnprocessableEntity, "Idempotency key was already used for a different request")
	}
	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, false, internalError(err)
	}
	return toOrderOutput(o, items), true, nil
}

func (u *CheckoutUsecase) fail(reason string, err error) error {
	metrics.CheckoutFailures.WithLabelValues(reason).Inc()
	return err
}

func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}
	he, ok := AsHTTPError(err)
	if !ok {
		return "internal"
	}
	switch {
	case he.Status == http.StatusNotFound:
		return "not_found"
	case he.Status == http.StatusUnprocessableEntity:
		return "idempotency_mismatch"
	case strings.HasPrefix(he.Message, "Insufficient stock"):
		return "stock"
	case he.Status == http.StatusBadRequest:
		return "price_mismatch"
	}
	return "internal"
}
