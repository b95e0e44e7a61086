package pricing_test

import (
	"testing"

	"shophub/internal/domain/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s got %s", want, got.String())
}

func TestCalculate_UnderThreshold(t *testing.T) {
	got := pricing.Calculate([]pricing.Line{{UnitPrice: d("10.00"), Quantity: 3}})

	assertDec(t, "30.00", got.Items)
	assertDec(t, "2.40", got.Tax)
	assertDec(t, "9.99", got.Shipping)
	assertDec(t, "42.39", got.Total)
}

func TestCalculate_OverThreshold(t *testing.T) {
	got := pricing.Calculate([]pricing.Line{{UnitPrice: d("30.00"), Quantity: 2}})

	assertDec(t, "60.00", got.Items)
	assertDec(t, "4.80", got.Tax)
	assertDec(t, "0", got.Shipping)
	assertDec(t, "64.80", got.Total)
}

func TestCalculate_ExactlyThresholdStillPaysShipping(t *testing.T) {
	got := pricing.Calculate([]pricing.Line{{UnitPrice: d("25"), Quantity: 2}})

	assertDec(t, "50", got.Items)
	assertDec(t, "9.99", got.Shipping)
	assertDec(t, "63.99", got.Total)
}

func TestCalculate_MultipleLines(t *testing.T) {
	got := pricing.Calculate([]pricing.Line{
		{UnitPrice: d("19.99"), Quantity: 1},
		{UnitPrice: d("5.25"), Quantity: 4},
	})

	assertDec(t, "40.99", got.Items)
	// 40.99 * 0.08 = 3.2792
	assertDec(t, "3.28", got.Tax)
	assertDec(t, "9.99", got.Shipping)
	assertDec(t, "54.26", got.Total)
}

func TestCalculate_TotalIsSumOfParts(t *testing.T) {
	cases := [][]pricing.Line{
		{{UnitPrice: d("0.99"), Quantity: 7}},
		{{UnitPrice: d("12.34"), Quantity: 5}, {UnitPrice: d("1.01"), Quantity: 1}},
		{{UnitPrice: d("49.99"), Quantity: 1}},
		{{UnitPrice: d("50.01"), Quantity: 1}},
	}
	for _, lines := range cases {
		got := pricing.Calculate(lines)
		assert.True(t, got.Total.Equal(got.Items.Add(got.Tax).Add(got.Shipping)))
		assert.False(t, got.Items.IsNegative())
		assert.False(t, got.Tax.IsNegative())
	}
}

func TestTotals_MatchesAtCentPrecision(t *testing.T) {
	server := pricing.Calculate([]pricing.Line{{UnitPrice: d("10.99"), Quantity: 1}})

	// クライアントは丸めずに送ってくる（10.99 * 0.08 = 0.8792）
	client := pricing.Totals{
		Items:    d("10.99"),
		Tax:      d("0.8792"),
		Shipping: d("9.99"),
		Total:    d("21.8592"),
	}
	assert.True(t, server.Matches(client))

	client.Total = d("20.00")
	assert.False(t, server.Matches(client))
}
