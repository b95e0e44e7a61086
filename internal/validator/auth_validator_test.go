package validator

import (
	"context"
	"testing"

	auth "shophub/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateRegister(ctx, "user@example.com", "s3cure-pass"))

	for _, tc := range []struct{ email, password string }{
		{"", "s3cure-pass"},
		{"not-an-email", "s3cure-pass"},
		{"user@example.com", "short"},
		{"user@example.com", "Password123"},
	} {
		err := v.ValidateRegister(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, auth.ErrInvalidInput, "%s / %s", tc.email, tc.password)
	}
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "user@example.com", "x"))
	assert.ErrorIs(t, v.ValidateLogin(ctx, "user@example.com", ""), auth.ErrInvalidInput)
}

func TestValidateRefreshAndForceLogout(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.ValidateRefresh(ctx, " "), auth.ErrInvalidRefresh)
	assert.NoError(t, v.ValidateRefresh(ctx, "token"))
	assert.ErrorIs(t, v.ValidateForceLogout(ctx, 0), auth.ErrInvalidInput)
	assert.NoError(t, v.ValidateForceLogout(ctx, 7))
}
