package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	auth "shophub/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh"

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	sessionUC  *auth.SessionUsecase      // refresh/logout/me
	cookie     CookieConfig
}

// refresh cookieの属性
type CookieConfig struct {
	Secure bool
	Domain string
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	sessionUC *auth.SessionUsecase,
	cookie CookieConfig,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		sessionUC:  sessionUC,
		cookie:     cookie,
	}
}

// /auth/register, /auth/login のリクエストボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, guards Guards) {
	g := e.Group("/auth")

	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, guards.Auth...)
}

// 登録後そのままログイン状態にする
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	if _, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return writeAuthError(c, err)
	}

	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, side.PlainRefreshToken, side.RefreshExpiresAt)
	return okMessage(c, http.StatusCreated, out, "User registered")
}

// LoginはPOST /auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	// User-Agentはrefresh tokenに紐付ける
	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, side.PlainRefreshToken, side.RefreshExpiresAt)
	return ok(c, http.StatusOK, out)
}

// cookieのrefresh tokenをローテーションする
func (h *AuthHandler) Refresh(c echo.Context) error {
	plain := readCookie(c, refreshCookieName)
	if plain == "" {
		return fail(c, http.StatusUnauthorized, "refresh token missing")
	}

	out, side, err := h.sessionUC.Refresh(c.Request().Context(), plain, c.Request().UserAgent())
	if err != nil {
		// 失効済みのcookieは消しておく
		if errors.Is(err, auth.ErrInvalidRefresh) || errors.Is(err, auth.ErrRefreshReuse) {
			h.clearRefreshCookie(c)
		}
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, side.PlainRefreshToken, side.RefreshExpiresAt)
	return ok(c, http.StatusOK, out)
}

// cookieが無くても成功扱い
func (h *AuthHandler) Logout(c echo.Context) error {
	if plain := readCookie(c, refreshCookieName); plain != "" {
		if err := h.sessionUC.Logout(c.Request().Context(), plain); err != nil {
			return writeAuthError(c, err)
		}
	}
	h.clearRefreshCookie(c)
	return okMessage(c, http.StatusOK, nil, "Logged out")
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "Not authorized, no token")
	}

	u, err := h.sessionUC.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return ok(c, http.StatusOK, u)
}

// auth usecaseのsentinel errorをHTTPに変換
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), auth.ErrInvalidInput.Error()+": ")
		return fail(c, http.StatusBadRequest, msg)
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return fail(c, http.StatusConflict, "User already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidRefresh), errors.Is(err, auth.ErrRefreshReuse):
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	case errors.Is(err, auth.ErrUserInactive):
		return fail(c, http.StatusForbidden, "user is inactive")
	case errors.Is(err, auth.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	default:
		return writeError(c, err)
	}
}

func readCookie(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(ck.Value)
}

// refresh tokenをCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/",
		Domain:   h.cookie.Domain,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
