package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "platefeed", cfg.DBName)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.False(t, cfg.RecipeDuplicateGuard)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_NAME", "platefeed_test")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RECIPE_DUPLICATE_GUARD", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "platefeed_test", cfg.DBName)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.RecipeDuplicateGuard)
}

func TestLoadConfigRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfigProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("CI", "")

	cfg := &Config{
		ServerPort: "8080",
		DBHost:     "db",
		DBPort:     "5432",
		DBName:     "platefeed",
		DBSSLMode:  "disable",
	}

	err := ValidateConfig(cfg)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "JWT_SECRET", ve.Field)

	cfg.JWTSecret = "secret"
	err = ValidateConfig(cfg)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "DB_PASSWORD", ve.Field)

	cfg.DBPassword = "password"
	err = ValidateConfig(cfg)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "DB_SSL_MODE", ve.Field)

	cfg.DBSSLMode = "require"
	assert.NoError(t, ValidateConfig(cfg))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	assert.Equal(t, Test, GetEnvironment())
	assert.True(t, IsTest())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}
