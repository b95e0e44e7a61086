package handler

import (
	"net/http"
	"strings"

	"shophub/internal/domain/model"
	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	checkout *usecase.CheckoutUsecase
	orders   *usecase.OrderUsecase
}

func NewOrderHandler(checkout *usecase.CheckoutUsecase, orders *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

type orderItemRequest struct {
	Product  int64  `json:"product"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	// image/priceはクライアント表示用。サーバーはカタログの値を使う
	Image string           `json:"image"`
	Price *decimal.Decimal `json:"price"`
}

type OrderCreateRequest struct {
	OrderItems      []orderItemRequest    `json:"orderItems"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	ItemsPrice      *decimal.Decimal      `json:"itemsPrice"`
	TaxPrice        *decimal.Decimal      `json:"taxPrice"`
	ShippingPrice   *decimal.Decimal      `json:"shippingPrice"`
	TotalPrice      *decimal.Decimal      `json:"totalPrice"`
	Notes           string                `json:"notes"`
}

type payerRequest struct {
	EmailAddress string `json:"email_address"`
}

type PayOrderRequest struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	UpdateTime string       `json:"update_time"`
	Payer      payerRequest `json:"payer"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/orders", guards.Auth...)

	if guards.Checkout != nil {
		g.POST("", h.create, guards.Checkout)
	} else {
		g.POST("", h.create)
	}
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PUT("/:id/pay", h.pay)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	items := make([]usecase.PlaceOrderItemInput, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, usecase.PlaceOrderItemInput{
			ProductID: it.Product,
			Name:      it.Name,
			Quantity:  it.Quantity,
		})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := strings.TrimSpace(c.Request().Header.Get("X-Idempotency-Key"))

	out, created, err := h.checkout.PlaceOrder(c.Request().Context(), userID, usecase.PlaceOrderInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
		Notes:           req.Notes,
		IdempotencyKey:  idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	if !created {
		return ok(c, http.StatusOK, out)
	}
	return okMessage(c, http.StatusCreated, out, "Order created successfully")
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}

	out, err := h.orders.ListMyOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}
	orderID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}

	out, err := h.orders.GetOrder(c.Request().Context(), userID, getRoleFromContext(c), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *OrderHandler) pay(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}
	orderID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}

	var req PayOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.orders.ConfirmPayment(c.Request().Context(), userID, orderID, usecase.ConfirmPaymentInput{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.Payer.EmailAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, out, "Payment confirmed")
}
