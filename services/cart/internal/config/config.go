package config

import (
	pkgconfig "github.com/Skotchmaster/grocery_shop/pkg/config"
)

const (
	defaultServiceName = "cart"
	defaultSQLitePath  = "cart.sqlite"
	defaultServerPort  = 8081
)

// Load reads the shared settings and fills in cart defaults. PRODUCT_URL is
// checked by the caller.
func Load() pkgconfig.Config {
	cfg := pkgconfig.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		cfg.SQLitePath = defaultSQLitePath
	}
	cfg.ServerPort = pkgconfig.EnvIntDefault("SERVER_PORT", defaultServerPort)
	return cfg
}
