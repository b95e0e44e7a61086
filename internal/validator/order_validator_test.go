package validator

import (
	"net/http"
	"testing"

	"shophub/internal/domain/model"
	"shophub/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validOrderInput() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		Items: []usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 2}},
		ShippingAddress: model.ShippingAddress{
			FirstName: "Ada", LastName: "Lovelace", Street: "1 Main St", City: "Springfield",
			State: "IL", ZipCode: "62701", Country: "US", Phone: "555-0100",
		},
		PaymentMethod: "Credit Card",
		ItemsPrice:    dec("20.00"),
		TaxPrice:      dec("1.60"),
		ShippingPrice: dec("9.99"),
		TotalPrice:    dec("31.59"),
	}
}

func assertBadRequest(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, msg, he.Message)
}

func TestValidatePlaceOrder_OK(t *testing.T) {
	assert.NoError(t, NewOrderValidator().ValidatePlaceOrder(validOrderInput()))
}

func TestValidatePlaceOrder_Rejects(t *testing.T) {
	v := NewOrderValidator()

	cases := []struct {
		name   string
		mutate func(in *usecase.PlaceOrderInput)
		msg    string
	}{
		{"no items", func(in *usecase.PlaceOrderInput) { in.Items = nil }, "No order items"},
		{"zero quantity", func(in *usecase.PlaceOrderInput) { in.Items[0].Quantity = 0 }, "Invalid quantity in order items"},
		{"bad product id", func(in *usecase.PlaceOrderInput) { in.Items[0].ProductID = 0 }, "Invalid product in order items"},
		{"blank city", func(in *usecase.PlaceOrderInput) { in.ShippingAddress.City = "   " }, "Shipping address is incomplete"},
		{"missing phone", func(in *usecase.PlaceOrderInput) { in.ShippingAddress.Phone = "" }, "Shipping address is incomplete"},
		{"unknown payment", func(in *usecase.PlaceOrderInput) { in.PaymentMethod = "Bitcoin" }, "Invalid payment method"},
		{"missing tax", func(in *usecase.PlaceOrderInput) { in.TaxPrice = nil }, "Invalid price values"},
		{"negative total", func(in *usecase.PlaceOrderInput) { in.TotalPrice = dec("-1") }, "Invalid price values"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validOrderInput()
			tc.mutate(&in)
			assertBadRequest(t, v.ValidatePlaceOrder(in), tc.msg)
		})
	}
}

func TestValidatePlaceOrder_AllPaymentMethods(t *testing.T) {
	v := NewOrderValidator()
	for _, m := range []string{"Credit Card", "PayPal", "Cash on Delivery"} {
		in := validOrderInput()
		in.PaymentMethod = m
		assert.NoError(t, v.ValidatePlaceOrder(in), m)
	}
}

func TestValidatePayment(t *testing.T) {
	v := NewOrderValidator()

	assert.NoError(t, v.ValidatePayment(usecase.ConfirmPaymentInput{ID: "PAY-1", Status: "COMPLETED"}))
	assertBadRequest(t, v.ValidatePayment(usecase.ConfirmPaymentInput{Status: "COMPLETED"}), "Invalid payment result")
}
