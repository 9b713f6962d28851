package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DB_DRIVER", "ACCESS_TOKEN_LIFETIME", "REFRESH_TOKEN_LIFETIME", "CACHE_TTL", "EMAIL_QUEUE", "ALLOWED_HOSTS", "CORS_ALLOWED_ORIGINS", "DEBUG"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, DefaultAppPort, cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 600*time.Minute, cfg.AccessTokenLifetime)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenLifetime)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, DefaultEmailQueue, cfg.EmailQueue)
	assert.Equal(t, []string{"*"}, cfg.AllowedHosts)
	assert.Empty(t, cfg.CORSOrigins)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("ACCESS_TOKEN_LIFETIME", "5m")
	t.Setenv("REFRESH_TOKEN_LIFETIME", "not-a-duration")
	t.Setenv("ALLOWED_HOSTS", "api.example.com localhost")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:8000,https://crowdfunding.example.com")
	t.Setenv("DEBUG", "True")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenLifetime)
	assert.Equal(t, DefaultRefreshTokenLifetime, cfg.RefreshTokenLifetime)
	assert.Equal(t, []string{"api.example.com", "localhost"}, cfg.AllowedHosts)
	assert.Equal(t, []string{"http://localhost:8000", "https://crowdfunding.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "crowd"}
	assert.Equal(t, "u:p@tcp(db:3306)/crowd?parseTime=true", cfg.DSN())

	cfg.DBDriver = "postgres"
	cfg.DBPort = "5432"
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=crowd sslmode=disable", cfg.DSN())
}
