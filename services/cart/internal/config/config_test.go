package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("PRODUCT_URL", "http://product:8080")

	cfg := Load()
	assert.Equal(t, "cart", cfg.ServiceName)
	assert.Equal(t, 8081, cfg.ServerPort)
	assert.Equal(t, "cart.sqlite", cfg.SQLitePath)
	assert.Equal(t, "http://product:8080", cfg.ProductURL)
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")

	assert.Equal(t, 9000, Load().ServerPort)
}
