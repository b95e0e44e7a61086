package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"shophub/internal/domain/model"
	"shophub/internal/domain/pricing"
	repo "shophub/internal/repository"

	"github.com/shopspring/decimal"
)

// 同じ商品が複数行に分かれていても在庫は合計数量で見る
type stockDemand struct {
	productIDs []int64 // 昇順。行ロックの順番を固定する
	qty        map[int64]int64
	label      map[int64]string
}

func collectDemand(items []PlaceOrderItemInput) stockDemand {
	d := stockDemand{qty: map[int64]int64{}, label: map[int64]string{}}
	for _, it := range items {
		if _, seen := d.qty[it.ProductID]; !seen {
			d.productIDs = append(d.productIDs, it.ProductID)
			d.label[it.ProductID] = it.Name
		}
		d.qty[it.ProductID] += it.Quantity
	}
	sort.Slice(d.productIDs, func(i, j int) bool { return d.productIDs[i] < d.productIDs[j] })
	return d
}

func (d stockDemand) labelFor(productID int64) string {
	if l := d.label[productID]; l != "" {
		return l
	}
	return strconv.FormatInt(productID, 10)
}

// 全行の存在と在庫を確認する。減算はまだしない
func verifyStock(ctx context.Context, products repo.ProductRepository, d stockDemand) (map[int64]model.Product, error) {
	catalog := make(map[int64]model.Product, len(d.productIDs))

	for _, id := range d.productIDs {
		p, err := products.FindByIDForUpdate(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, fmt.Sprintf("Product %s not found", d.labelFor(id)))
		}
		if err != nil {
			return nil, internalError(err)
		}
		// 非公開は存在しない扱い
		if !p.IsActive {
			return nil, NewHTTPError(http.StatusNotFound, fmt.Sprintf("Product %s not found", p.Name))
		}
		if p.Stock < d.qty[id] {
			return nil, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Insufficient stock for %s", p.Name))
		}
		catalog[id] = p
	}
	return catalog, nil
}

// 条件付きUPDATEで減らす。0件なら在庫不足としてTx全体を戻す
func decrementStock(ctx context.Context, inv repo.InventoryRepository, d stockDemand, catalog map[int64]model.Product) error {
	for _, id := range d.productIDs {
		ok, err := inv.DecreaseStockIfEnough(ctx, id, d.qty[id])
		if err != nil {
			return internalError(err)
		}
		if !ok {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Insufficient stock for %s", catalog[id].Name))
		}
	}
	return nil
}

// カタログ価格で計算し直す
func priceOrder(items []PlaceOrderItemInput, catalog map[int64]model.Product) pricing.Totals {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{
			UnitPrice: catalog[it.ProductID].Price,
			Quantity:  it.Quantity,
		})
	}
	return pricing.Calculate(lines)
}

func submittedTotals(in PlaceOrderInput) pricing.Totals {
	return pricing.Totals{
		Items:    *in.ItemsPrice,
		Tax:      *in.TaxPrice,
		Shipping: *in.ShippingPrice,
		Total:    *in.TotalPrice,
	}
}

// 注文と明細を保存する。名前・画像・価格はカタログからスナップショット
func writeOrder(
	ctx context.Context,
	r repo.TxRepos,
	userID int64,
	in PlaceOrderInput,
	catalog map[int64]model.Product,
	totals pricing.Totals,
	idemKey *string,
	requestHash string,
	now time.Time,
) (model.Order, []model.OrderItem, error) {
	order, err := r.Orders().Create(ctx, model.Order{
		UserID:         userID,
		Shipping:       trimAddress(in.ShippingAddress),
		PaymentMethod:  model.PaymentMethod(in.PaymentMethod),
		ItemsPrice:     totals.Items,
		TaxPrice:       totals.Tax,
		ShippingPrice:  totals.Shipping,
		TotalPrice:     totals.Total,
		IsPaid:         false,
		IsDelivered:    false,
		Status:         model.OrderStatusPending,
		Notes:          in.Notes,
		IdempotencyKey: idemKey,
		RequestHash:    requestHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return model.Order{}, nil, internalError(err)
	}

	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		p := catalog[it.ProductID]
		items = append(items, model.OrderItem{
			ProductID:           p.ID,
			ProductNameSnapshot: p.Name,
			ImageSnapshot:       p.Image,
			UnitPriceSnapshot:   p.Price,
			Quantity:            it.Quantity,
			CreatedAt:           now,
		})
	}
	if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
		return model.Order{}, nil, internalError(err)
	}

	return order, items, nil
}

func trimAddress(a model.ShippingAddress) model.ShippingAddress {
	return model.ShippingAddress{
		FirstName: strings.TrimSpace(a.FirstName),
		LastName:  strings.TrimSpace(a.LastName),
		Street:    strings.TrimSpace(a.Street),
		City:      strings.TrimSpace(a.City),
		State:     strings.TrimSpace(a.State),
		ZipCode:   strings.TrimSpace(a.ZipCode),
		Country:   strings.TrimSpace(a.Country),
		Phone:     strings.TrimSpace(a.Phone),
	}
}

type fingerprintLine struct {
	ProductID int64 `json:"p"`
	Quantity  int64 `json:"q"`
}

type fingerprint struct {
	Items   []fingerprintLine     `json:"items"`
	Address model.ShippingAddress `json:"address"`
	Payment string                `json:"payment"`
	Totals  [4]string             `json:"totals"`
	Notes   string                `json:"notes"`
}

// 冪等キーの再送が同じ注文内容かを比べるためのハッシュ
// 表示用のNameは含めない
func requestFingerprint(in PlaceOrderInput) string {
	fp := fingerprint{
		Items:   make([]fingerprintLine, 0, len(in.Items)),
		Address: trimAddress(in.ShippingAddress),
		Payment: strings.TrimSpace(in.PaymentMethod),
		Notes:   in.Notes,
	}
	for _, it := range in.Items {
		fp.Items = append(fp.Items, fingerprintLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	for i, d := range []*decimal.Decimal{in.ItemsPrice, in.TaxPrice, in.ShippingPrice, in.TotalPrice} {
		if d != nil {
			fp.Totals[i] = d.StringFixed(2)
		}
	}

	b, _ := json.Marshal(fp)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
