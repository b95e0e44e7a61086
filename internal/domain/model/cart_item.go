package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// 追加時点の価格）を必ず保存。
type CartItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64           `gorm:"not null;index;uniqueIndex:idx_cart_items_cart_product" json:"cartId"`
	ProductID         int64           `gorm:"not null;index;uniqueIndex:idx_cart_items_cart_product" json:"productId"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price_snapshot" json:"unitPriceSnapshot"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
