package repository

import (
	"context"
	"errors"
	"time"

	"shophub/internal/domain/model"
)

// 読んだ時点のstatusから別のリクエストが先に動かした
var ErrStatusConflict = errors.New("order status changed concurrently")

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 決済確認で書き換える項目
type OrderPaymentUpdate struct {
	PaidAt time.Time
	Result model.PaymentResult
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 行ロック付き（Tx内で使う）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)

	// statusがfromのままのときだけtoへ更新。0件ならErrStatusConflict
	// deliveredAtが渡されたときだけ配送済みにする
	UpdateStatus(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus, deliveredAt *time.Time) error
	// 支払い済みにしてprocessingへ
	MarkPaid(ctx context.Context, orderID int64, p OrderPaymentUpdate) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
