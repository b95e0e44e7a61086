package validator

import (
	"net/http"

	"shophub/internal/domain/model"
	"shophub/internal/usecase"

	"github.com/shopspring/decimal"
)

// 1注文あたりの上限
const (
	maxOrderLines   = 100
	maxLineQuantity = 1000
	maxNotesLen     = 1000
)

type orderValidator struct{}

func NewOrderValidator() usecase.OrderValidator {
	return &orderValidator{}
}

func badRequest(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}

// 明細・配送先・支払い方法・金額を検証する（在庫と価格の照合はusecase側）
func (v *orderValidator) ValidatePlaceOrder(in usecase.PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return badRequest("No order items")
	}
	if len(in.Items) > maxOrderLines {
		return badRequest("Too many order items")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return badRequest("Invalid product in order items")
		}
		if it.Quantity < 1 || it.Quantity > maxLineQuantity {
			return badRequest("Invalid quantity in order items")
		}
	}

	if !in.ShippingAddress.IsComplete() {
		return badRequest("Shipping address is incomplete")
	}

	if !model.PaymentMethod(in.PaymentMethod).IsValid() {
		return badRequest("Invalid payment method")
	}

	for _, p := range []*decimal.Decimal{in.ItemsPrice, in.TaxPrice, in.ShippingPrice, in.TotalPrice} {
		if p == nil || p.IsNegative() {
			return badRequest("Invalid price values")
		}
	}

	if len(in.Notes) > maxNotesLen {
		return badRequest("Notes too long")
	}
	return nil
}

// 決済結果はそのまま保存するので最低限のチェックだけ
func (v *orderValidator) ValidatePayment(in usecase.ConfirmPaymentInput) error {
	if in.ID == "" || in.Status == "" {
		return badRequest("Invalid payment result")
	}
	if len(in.ID) > 255 || len(in.Status) > 100 || len(in.UpdateTime) > 100 || len(in.EmailAddress) > 255 {
		return badRequest("Invalid payment result")
	}
	return nil
}
