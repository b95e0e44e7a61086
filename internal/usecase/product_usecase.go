package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	clock       Clock
}

// DI
func NewProductUsecase(tx repo.TransactionManager, productRepo repo.ProductRepository, clock Clock) *ProductUsecase {
	return &ProductUsecase{
		tx:          tx,
		productRepo: productRepo,
		clock:       clock,
	}
}

// GET /productsの入力
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Products    []model.Product `json:"products"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Total       int64           `json:"total"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "maxPrice must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "minPrice must be <= maxPrice")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, internalError(err)
	}

	return ProductListOutput{
		Products:    items,
		TotalPages:  totalPages(total, in.Limit),
		CurrentPage: in.Page,
		Total:       total,
	}, nil
}

// 非公開は404
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return model.Product{}, internalError(err)
	}
	return p, nil
}

type AdminProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    string
	Stock       int64
	IsActive    bool
}

func validateProductInput(in AdminProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	// numeric(12,2)に収まらない桁は拒否
	if !in.Price.Equal(in.Price.Round(2)) {
		return NewHTTPError(http.StatusBadRequest, "price must have at most 2 decimals")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, actorUserID int64, in AdminProductInput) (model.Product, error) {
	if actorUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateProductInput(in); err != nil {
		return model.Product{}, err
	}

	now := u.clock.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Product{}, internalError(err)
	}
	return p, nil
}

// 在庫は変更しない（在庫APIを使う）
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, actorUserID int64, productID int64, in AdminProductInput) (model.Product, error) {
	if actorUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := validateProductInput(in); err != nil {
		return model.Product{}, err
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:          productID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
		IsActive:    in.IsActive,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return model.Product{}, internalError(err)
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, internalError(err)
	}
	return p, nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, actorUserID int64, productID int64) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return internalError(err)
	}
	return nil
}

type stockAudit struct {
	Stock int64 `json:"stock"`
}

// 在庫を設定し、調整履歴と監査ログを同じTxで残す
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, actorUserID int64, productID int64, newStock int64, reason string) (model.Product, error) {
	if actorUserID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 変更前（行ロック）
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Product not found")
		}
		if err != nil {
			return internalError(err)
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			return internalError(err)
		}

		now := u.clock.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: actorUserID,
			Delta:       newStock - p.Stock,
			Reason:      reason,
			CreatedAt:   now,
		}); err != nil {
			return internalError(err)
		}

		//「誰が」「何を」「どの対象に」「どう変えたか」
		before, _ := json.Marshal(stockAudit{Stock: p.Stock})
		after, _ := json.Marshal(stockAudit{Stock: newStock})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return internalError(err)
		}

		p.Stock = newStock
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}
