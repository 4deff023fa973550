package config

import (
	pkgconfig "github.com/Skotchmaster/grocery_shop/pkg/config"
)

type Config struct {
	ListenAddr string
	LogLevel   string
	ProductURL string
	CartURL    string
}

func Load() Config {
	cfg := Config{
		ListenAddr: pkgconfig.EnvDefault("GATEWAY_ADDR", ":8000"),
		LogLevel:   pkgconfig.EnvDefault("LOG_LEVEL", "info"),
		ProductURL: pkgconfig.EnvDefault("PRODUCT_URL", ""),
		CartURL:    pkgconfig.EnvDefault("CART_URL", ""),
	}
	pkgconfig.MustNonEmpty(cfg.ProductURL, "PRODUCT_URL")
	pkgconfig.MustNonEmpty(cfg.CartURL, "CART_URL")
	return cfg
}
