package config

import (
	pkgconfig "github.com/Skotchmaster/grocery_shop/pkg/config"
)

const (
	defaultServiceName = "product"
	defaultSQLitePath  = "product.sqlite"
)

// Load reads the shared settings and fills in product defaults.
func Load() pkgconfig.Config {
	cfg := pkgconfig.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		cfg.SQLitePath = defaultSQLitePath
	}
	return cfg
}
