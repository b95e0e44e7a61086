package usecase

import (
	"time"

	"shophub/internal/domain/model"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	Product  int64           `json:"product"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type OrderOutput struct {
	ID              int64                 `json:"id"`
	TrackingNumber  string                `json:"trackingNumber"`
	User            int64                 `json:"user"`
	OrderItems      []OrderItemOutput     `json:"orderItems"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
	PaymentResult   *model.PaymentResult  `json:"paymentResult,omitempty"`
	ItemsPrice      decimal.Decimal       `json:"itemsPrice"`
	TaxPrice        decimal.Decimal       `json:"taxPrice"`
	ShippingPrice   decimal.Decimal       `json:"shippingPrice"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt"`
	IsDelivered     bool                  `json:"isDelivered"`
	DeliveredAt     *time.Time            `json:"deliveredAt"`
	Status          model.OrderStatus     `json:"status"`
	Notes           string                `json:"notes"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// 一覧のページング付きレスポンス
type OrderListOutput struct {
	Orders      []OrderOutput `json:"orders"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Total       int64         `json:"total"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			Product:  it.ProductID,
			Name:     it.ProductNameSnapshot,
			Image:    it.ImageSnapshot,
			Price:    it.UnitPriceSnapshot,
			Quantity: it.Quantity,
		})
	}

	out := OrderOutput{
		ID:              o.ID,
		TrackingNumber:  o.TrackingNumber,
		User:            o.UserID,
		OrderItems:      outItems,
		ShippingAddress: o.Shipping,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice,
		TaxPrice:        o.TaxPrice,
		ShippingPrice:   o.ShippingPrice,
		TotalPrice:      o.TotalPrice,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		Status:          o.Status,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	// 支払い前は返さない
	if o.IsPaid {
		pr := o.PaymentResult
		out.PaymentResult = &pr
	}
	return out
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
