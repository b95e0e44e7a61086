package handler

import (
	"net/http"
	"time"

	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	admin := e.Group("/admin", guards.Auth...)
	admin.GET("/audit-logs", h.list, guards.Admin)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid page")
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid limit")
	}
	actorID, err := queryInt64Ptr(c, "actorUserId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid actorUserId")
	}
	resourceID, err := queryInt64Ptr(c, "resourceId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid resourceId")
	}

	in := usecase.ListAuditLogsInput{
		Page:         page,
		Limit:        limit,
		ActorUserID:  actorID,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resourceType"),
		ResourceID:   resourceID,
	}
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid from")
		}
		in.From = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid to")
		}
		in.To = &tm
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out)
}
