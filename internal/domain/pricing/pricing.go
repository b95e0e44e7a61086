// 注文金額（小計・税・送料・合計）の計算。
// フロントと同じ計算式をサーバー側でも実行し、送られてきた金額と突き合わせる。
package pricing

import "github.com/shopspring/decimal"

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShippingFee       = decimal.RequireFromString("9.99")
)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

type Totals struct {
	Items    decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// 小計 > 50 のときだけ送料無料（ちょうど50は有料）
// 税と合計は小数2桁に四捨五入
func Calculate(lines []Line) Totals {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	items = items.Round(2)

	tax := items.Mul(TaxRate).Round(2)

	shipping := FlatShippingFee
	if items.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Items:    items,
		Tax:      tax,
		Shipping: shipping,
		Total:    items.Add(tax).Add(shipping).Round(2),
	}
}

// 両方をセント単位に丸めて4項目すべて比較
func (t Totals) Matches(o Totals) bool {
	return cents(t.Items).Equal(cents(o.Items)) &&
		cents(t.Tax).Equal(cents(o.Tax)) &&
		cents(t.Shipping).Equal(cents(o.Shipping)) &&
		cents(t.Total).Equal(cents(o.Total))
}

func cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
