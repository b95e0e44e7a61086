package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "8080")
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "shop")
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("GO_ENV", "dev")
	t.Setenv("API_DOMAIN", "localhost")
	t.Setenv("FE_URL", "http://localhost:3000")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CHECKOUT_RATE_PER_MIN", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("POSTGRES_SSLMODE", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5433, cfg.PostgresPort)
	assert.Equal(t, "disable", cfg.PostgresSSLMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.CheckoutRatePerMin)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "host=localhost port=5433 user=shop password=secret dbname=shop sslmode=disable", cfg.DSN())
}

func TestLoad_DatabaseURLSkipsPostgresKeys(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_USER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.DSN())
}

func TestLoad_MissingRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"POSTGRES_PORT":         "abc",
		"CHECKOUT_RATE_PER_MIN": "0",
		"COOKIE_SECURE":         "maybe",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_ProdCookieSecure(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GO_ENV", "prod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.CookieSecure)

	t.Setenv("COOKIE_SECURE", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.CookieSecure)
}
