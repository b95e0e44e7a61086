package server

import (
	"net/http"

	"shophub/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 全ハンドラ
type Handlers struct {
	Auth         *handler.AuthHandler
	AdminUser    *handler.AdminUserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AuditLog     *handler.AuditLogHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, guards handler.Guards) {
	e.GET("/health", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h.Auth.RegisterRoutes(e, guards)
	h.AdminUser.RegisterRoutes(e, guards)
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, guards)
	h.Cart.RegisterRoutes(e, guards)
	// /orders/admin/all を /orders/:id より先に登録
	h.AdminOrder.RegisterRoutes(e, guards)
	h.Order.RegisterRoutes(e, guards)
	h.AuditLog.RegisterRoutes(e, guards)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, handler.SuccessResponse{
		Success: true,
		Data:    map[string]string{"status": "ok"},
	})
}
