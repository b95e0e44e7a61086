package model

import "github.com/shopspring/decimal"

// 金額はJSONで数値として返す（フロントはnumberで扱う）
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
