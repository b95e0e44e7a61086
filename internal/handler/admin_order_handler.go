package handler

import (
	"net/http"
	"time"

	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

// /orders配下だがADMIN限定のルート
func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	admin := guards.with(guards.Admin)

	e.GET("/orders/admin/all", h.list, admin...)
	e.PUT("/orders/:id/status", h.updateStatus, admin...)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}

	userID, err := queryInt64Ptr(c, "userId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid userId")
	}

	var fromPtr *time.Time
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid from")
		}
		fromPtr = &tm
	}

	var toPtr *time.Time
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid to")
		}
		toPtr = &tm
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdminListOrdersInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   fromPtr,
		To:     toPtr,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid order id")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	//操作した管理者ID（監査ログ用）
	adminID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return okMessage(c, http.StatusOK, out, "Order status updated")
}
