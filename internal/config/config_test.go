package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdminChats(t *testing.T) {
	admins, err := ParseAdminChats(" 100:1, 200:2 ")
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{100: 1, 200: 2}, admins)

	admins, err = ParseAdminChats("")
	require.NoError(t, err)
	assert.Empty(t, admins)

	_, err = ParseAdminChats("100")
	assert.Error(t, err)

	_, err = ParseAdminChats("abc:1")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/alumni")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("MIGRATIONS_AUTO", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.MigrationsAuto)
}

func TestLoad_RequiredFields(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DSN")

	t.Setenv("DB_DSN", "postgres://localhost/alumni")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err = Load()
	assert.ErrorContains(t, err, "ADMIN_PASSWORD")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/alumni")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL", "forever")

	_, err := Load()
	assert.ErrorContains(t, err, "TOKEN_TTL")
}
