package repository

import (
	"context"
	"errors"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&cart).Error
		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		// user_idはunique。同時作成で負けた側は作られた方を読み直す
		newCart := model.Cart{UserID: userID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&newCart)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Where("user_id = ?", userID).First(&cart).Error
		}
		cart = newCart
		return nil
	})
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// ユーザーのカートを取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// ユーザーのカート明細を全削除（カート自体は残す）
func (r *CartGormRepository) ClearByUserID(ctx context.Context, userID int64) error {
	sub := r.db.Model(&model.Cart{}).Select("id").Where("user_id = ?", userID)

	return r.db.WithContext(ctx).
		Where("cart_id IN (?)", sub).
		Delete(&model.CartItem{}).Error
}
