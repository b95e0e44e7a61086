package handler

import (
	"net/http"
	"strconv"

	"shophub/internal/domain/model"
	"shophub/internal/middleware"
	"shophub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// 成功時の共通レスポンス
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// 失敗時の共通レスポンス
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, SuccessResponse{Success: true, Data: data})
}

func okMessage(c echo.Context, status int, data interface{}, msg string) error {
	return c.JSON(status, SuccessResponse{Success: true, Data: data, Message: msg})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Success: false, Message: msg})
}

// usecaseのエラーをHTTPに変換。500の原因はログにだけ出す
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, isHTTP := usecase.AsHTTPError(err); isHTTP {
		if he.Status >= http.StatusInternalServerError {
			requestLogger(c).WithError(err).Error("request failed")
		}
		return fail(c, he.Status, he.Message)
	}

	//500
	requestLogger(c).WithError(err).Error("unhandled error")
	return fail(c, http.StatusInternalServerError, "internal server error")
}

func requestLogger(c echo.Context) logrus.FieldLogger {
	if l, found := c.Get(middleware.CtxLoggerKey).(logrus.FieldLogger); found {
		return l
	}
	return logrus.StandardLogger()
}

// AuthJWTが入れたuser_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v, found := c.Get(middleware.CtxUserIDKey).(int64)
	if !found || v <= 0 {
		return 0, false
	}
	return v, true
}

func getRoleFromContext(c echo.Context) model.Role {
	v, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return model.Role(v)
}

// 未指定ならdef
func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &x, nil
}

func paramID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ルート登録で使うミドルウェア一式
type Guards struct {
	Auth     []echo.MiddlewareFunc // JWT検証 + token_version
	Admin    echo.MiddlewareFunc
	Staff    echo.MiddlewareFunc // ADMIN or EDITOR
	Checkout echo.MiddlewareFunc // POST /ordersのレート制限
}

func (g Guards) with(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(g.Auth)+len(extra))
	out = append(out, g.Auth...)
	return append(out, extra...)
}
