package usecase_test

import (
	"context"
	"testing"
	"time"

	"shophub/internal/domain/model"
	"shophub/internal/domain/pricing"
	"shophub/internal/infra/cache"
	"shophub/internal/infra/db/dbtest"
	infraRepo "shophub/internal/infra/repository"
	"shophub/internal/usecase"
	"shophub/internal/validator"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =====================
// 固定時計
// =====================

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

// =====================
// SQLite + 本物のrepositoryで組み立てる
// =====================

type fixture struct {
	db       *gorm.DB
	lock     *cache.MemoryCheckoutLock
	clock    *fixedClock
	checkout *usecase.CheckoutUsecase
	orders   *usecase.OrderUsecase
	admin    *usecase.AdminOrderUsecase
	cart     *usecase.CartUsecase
	products *usecase.ProductUsecase
	audit    *usecase.AuditLogUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := dbtest.New(t)
	log, _ := logtest.NewNullLogger()
	clock := &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lock := cache.NewMemoryCheckoutLock()

	txm := infraRepo.NewTxManagerGorm(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	ov := validator.NewOrderValidator()

	return &fixture{
		db:       gdb,
		lock:     lock,
		clock:    clock,
		checkout: usecase.NewCheckoutUsecase(txm, orderRepo, orderItemRepo, lock, ov, clock, log),
		orders:   usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo, ov, clock, log),
		admin:    usecase.NewAdminOrderUsecase(txm, orderRepo, orderItemRepo, clock, log),
		cart: usecase.NewCartUsecase(
			infraRepo.NewCartGormRepository(gdb),
			infraRepo.NewCartItemGormRepository(gdb),
			productRepo,
		),
		products: usecase.NewProductUsecase(txm, productRepo, clock),
		audit:    usecase.NewAuditLogUsecase(infraRepo.NewAuditLogGormRepository(gdb)),
	}
}

func (f *fixture) seedUser(t *testing.T, email string, role model.Role) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) seedProduct(t *testing.T, name string, price string, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Image:    "/images/" + name + ".jpg",
		Category: "gadgets",
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) stockOf(t *testing.T, productID int64) int64 {
	t.Helper()
	var p model.Product
	require.NoError(t, f.db.Unscoped().First(&p, productID).Error)
	return p.Stock
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

// =====================
// 入力の組み立て
// =====================

func testAddress() model.ShippingAddress {
	return model.ShippingAddress{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Street:    "1 Main St",
		City:      "Springfield",
		State:     "IL",
		ZipCode:   "62701",
		Country:   "US",
		Phone:     "555-0100",
	}
}

type line struct {
	product model.Product
	qty     int64
}

// カタログ価格どおりの金額で注文入力を作る
func orderInput(lines ...line) usecase.PlaceOrderInput {
	in := usecase.PlaceOrderInput{
		ShippingAddress: testAddress(),
		PaymentMethod:   string(model.PaymentMethodCreditCard),
	}
	pl := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		in.Items = append(in.Items, usecase.PlaceOrderItemInput{
			ProductID: l.product.ID,
			Name:      l.product.Name,
			Quantity:  l.qty,
		})
		pl = append(pl, pricing.Line{UnitPrice: l.product.Price, Quantity: l.qty})
	}
	totals := pricing.Calculate(pl)
	in.ItemsPrice = &totals.Items
	in.TaxPrice = &totals.Tax
	in.ShippingPrice = &totals.Shipping
	in.TotalPrice = &totals.Total
	return in
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "want HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	if msg != "" {
		assert.Equal(t, msg, he.Message)
	}
}

func (f *fixture) placeOrder(t *testing.T, userID int64, in usecase.PlaceOrderInput) usecase.OrderOutput {
	t.Helper()
	out, created, err := f.checkout.PlaceOrder(context.Background(), userID, in)
	require.NoError(t, err)
	require.True(t, created)
	return out
}
