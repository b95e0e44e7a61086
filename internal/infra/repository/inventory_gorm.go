package repository

import (
	"context"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"

	"gorm.io/gorm"
)

// 在庫はproducts.stockを直接書き換える
type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) products(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Product{})
}

// 管理画面からの棚卸し
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, newStock int64) error {
	res := r.products(ctx).Where("id = ?", productID).Update("stock", newStock)
	return affected(res, repo.ErrNotFound)
}

// stock >= qty の行だけ減らす。1文なので並行チェックアウトでも負にならない
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.products(ctx).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	switch err := affected(res, repo.ErrNotFound); err {
	case nil:
		return true, nil
	case repo.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

// キャンセル時の戻し。削除済み商品にも戻す
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	res := r.products(ctx).Unscoped().
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))
	return affected(res, repo.ErrNotFound)
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
