package repository

import (
	"context"

	"shophub/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 明細を空にする。カートが無い・既に空でもエラーにしない
	ClearByUserID(ctx context.Context, userID int64) error
}
