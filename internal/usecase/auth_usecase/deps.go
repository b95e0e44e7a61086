package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"shophub/internal/domain/model"
)

var (
	// 400
	ErrInvalidInput = errors.New("invalid input")
	// 409
	ErrEmailAlreadyExists = errors.New("email already exists")
	// 401 メールまたはパスワードが違う
	ErrInvalidCredentials = errors.New("invalid credentials")
	// 403 停止済みユーザー
	ErrUserInactive = errors.New("user is inactive")
	// 401 refresh tokenが無い・期限切れ・失効済み
	ErrInvalidRefresh = errors.New("invalid refresh token")
	// 401 使用済みrefresh tokenの再利用。そのユーザーの全トークンを消す
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// 404
	ErrUserNotFound = errors.New("user not found")
)

// 入力チェック（validatorパッケージが実装）
type InputValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
	ValidateForceLogout(ctx context.Context, targetUserID int64) error
}

// 平文パスワードからハッシュへ
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// JWTを発行する
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// refresh tokenのID
type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// token 形（JwtAccessToken相当）
type JwtAccessToken struct {
	AccessToken  string `json:"accessToken"`
	ExpiresIn    int    `json:"expiresIn"`
	TokenVersion int    `json:"tokenVersion"`
}

// DBにはハッシュだけ保存する
func hashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
