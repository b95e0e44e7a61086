package handler

import (
	"net/http"

	auth "shophub/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	sessionUC *auth.SessionUsecase
}

func NewAdminUserHandler(sessionUC *auth.SessionUsecase) *AdminUserHandler {
	return &AdminUserHandler{sessionUC: sessionUC}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	admin := e.Group("/admin", guards.Auth...)
	admin.POST("/users/:id/force-logout", h.ForceLogout, guards.Admin)
}

// 対象ユーザーのtoken_versionを上げて全セッションを無効化
func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	targetID, valid := paramID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	actorID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	res, err := h.sessionUC.ForceLogout(c.Request().Context(), actorID, targetID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return ok(c, http.StatusOK, res)
}
