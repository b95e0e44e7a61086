package handler

import (
	"net/http"

	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Stock       int64           `json:"stock"`
	IsActive    *bool           `json:"isActive"`
}

// 未指定なら公開
func (r ProductRequest) toInput() usecase.AdminProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return usecase.AdminProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
		Category:    r.Category,
		Stock:       r.Stock,
		IsActive:    active,
	}
}

// 在庫更新の入力
type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/products と /admin/inventory をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// 作成・更新・在庫はADMIN/EDITOR、削除はADMINのみ
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	admin := e.Group("/admin", guards.Auth...)

	admin.POST("/products", h.createProduct, guards.Staff)
	admin.PUT("/products/:id", h.updateProduct, guards.Staff)
	admin.DELETE("/products/:id", h.deleteProduct, guards.Admin)
	admin.PUT("/inventory/:productId", h.updateInventory, guards.Staff)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	actorID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), actorID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return okMessage(c, http.StatusCreated, p, "Product created")
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	actorID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), actorID, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return okMessage(c, http.StatusOK, p, "Product updated")
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	actorID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}

	return okMessage(c, http.StatusOK, nil, "Product deleted")
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	productID, valid := paramID(c, "productId")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid productId")
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	actorID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	p, err := h.uc.AdminUpdateInventory(c.Request().Context(), actorID, productID, req.Stock, req.Reason)
	if err != nil {
		return writeError(c, err)
	}

	return okMessage(c, http.StatusOK, p, "Stock updated")
}
