package auth

import (
	"strconv"
	"time"

	"shophub/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// accesstokenの有効期限
const AccessTokenTTL = 15 * time.Minute

// refreshtokenの有効期限
const RefreshTokenTTL = 30 * 24 * time.Hour

// HS256で署名する。claimsはsub / role / tv / iat / exp
type HS256Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewHS256Issuer(secret string, ttl time.Duration) *HS256Issuer {
	if ttl <= 0 {
		ttl = AccessTokenTTL
	}
	return &HS256Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *HS256Issuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	exp := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// refresh tokenのID
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
