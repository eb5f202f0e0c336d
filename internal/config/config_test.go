package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "UPLOAD_MAX_SIZE_MB", "UPLOAD_MAX_ROWS", "CORS_ALLOWED_ORIGINS", "ENABLE_DEV_TOKENS", "IMPORT_REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.DevTokens)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 5000, cfg.Upload.MaxRows)
	assert.Equal(t, 60*time.Second, cfg.Import.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_ROWS", "250")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ENABLE_DEV_TOKENS", "false")
	t.Setenv("IMPORT_REQUEST_TIMEOUT", "15s")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 250, cfg.Upload.MaxRows)
	assert.Equal(t, int64(2*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Server.DevTokens)
	assert.Equal(t, 15*time.Second, cfg.Import.RequestTimeout)
	assert.Equal(t, 10, cfg.Database.MaxConns)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "mh", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/mh?sslmode=disable", d.DSN())
}
