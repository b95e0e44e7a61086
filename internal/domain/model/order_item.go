package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の商品名・画像・価格を保存する（商品側の変更には追従しない）
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"orderId"`
	ProductID           int64           `gorm:"not null;index" json:"productId"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"name"`
	ImageSnapshot       string          `gorm:"type:varchar(1024)" json:"image"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}
