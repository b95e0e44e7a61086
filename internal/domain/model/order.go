package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "Credit Card"
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodCashOnDelivery PaymentMethod = "Cash on Delivery"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// 配送先。全項目必須（部分的な住所は受け付けない）
type ShippingAddress struct {
	FirstName string `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName  string `gorm:"type:varchar(100);not null" json:"lastName"`
	Street    string `gorm:"type:varchar(255);not null" json:"street"`
	City      string `gorm:"type:varchar(255);not null" json:"city"`
	State     string `gorm:"type:varchar(100);not null" json:"state"`
	ZipCode   string `gorm:"type:varchar(20);not null" json:"zipCode"`
	Country   string `gorm:"type:varchar(100);not null" json:"country"`
	Phone     string `gorm:"type:varchar(30);not null" json:"phone"`
}

func (a ShippingAddress) IsComplete() bool {
	for _, v := range []string{a.FirstName, a.LastName, a.Street, a.City, a.State, a.ZipCode, a.Country, a.Phone} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// 決済結果。呼び出し側から渡された値をそのまま記録する
type PaymentResult struct {
	ID           string `gorm:"type:varchar(255)" json:"id"`
	Status       string `gorm:"type:varchar(100)" json:"status"`
	UpdateTime   string `gorm:"type:varchar(100)" json:"updateTime"`
	EmailAddress string `gorm:"type:varchar(255)" json:"emailAddress"`
}

type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackingNumber string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"trackingNumber"`
	UserID         int64           `gorm:"not null;index;uniqueIndex:idx_orders_user_idem" json:"user"`
	Shipping       ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(32);not null" json:"paymentMethod"`
	PaymentResult  PaymentResult   `gorm:"embedded;embeddedPrefix:payment_" json:"paymentResult"`

	//注文時点の金額（読み出し時に再計算しない）
	ItemsPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"itemsPrice"`
	TaxPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"taxPrice"`
	ShippingPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shippingPrice"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`

	IsPaid      bool        `gorm:"not null;default:false" json:"isPaid"`
	PaidAt      *time.Time  `json:"paidAt"`
	IsDelivered bool        `gorm:"not null;default:false" json:"isDelivered"`
	DeliveredAt *time.Time  `json:"deliveredAt"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes       string      `gorm:"type:text" json:"notes"`

	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idem" json:"-"`
	// 冪等キーで作ったときのリクエスト内容のsha256
	RequestHash string    `gorm:"type:varchar(64)" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
