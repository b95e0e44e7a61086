package handler

import (
	"net/http"

	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /cart, /cart/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/cart", guards.Auth...)

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("", h.clear)
	g.PATCH("/:id", h.patchItem)
	g.DELETE("/:id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	itemID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), userID, itemID, usecase.UpdateCartItemInput{
		Quantity: req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	itemID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.DeleteCartItem(c.Request().Context(), userID, itemID)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	out, err := h.uc.ClearCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return okMessage(c, http.StatusOK, out, "Cart cleared")
}
