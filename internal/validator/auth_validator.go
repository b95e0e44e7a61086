package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	auth "shophub/internal/usecase/auth_usecase"
)

const minPasswordLen = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// よくある弱いパスワード
var weakPasswords = map[string]struct{}{
	"password":    {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwertyuiop":  {},
	"letmein123":  {},
	"admin123":    {},
}

type authValidator struct{}

func NewAuthValidator() auth.InputValidator {
	return &authValidator{}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", auth.ErrInvalidInput, msg)
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return invalid("email and password are required")
	}
	if !emailRe.MatchString(email) {
		return invalid("invalid email format")
	}
	if len(password) < minPasswordLen {
		return invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return invalid("password is too weak")
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return invalid("email and password are required")
	}
	if !emailRe.MatchString(email) {
		return invalid("invalid email format")
	}
	return nil
}

func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return auth.ErrInvalidRefresh
	}
	return nil
}

// 強制ログアウトの入力を検証
func (v *authValidator) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	if targetUserID <= 0 {
		return invalid("invalid user id")
	}
	return nil
}
