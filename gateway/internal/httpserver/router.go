package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/grocery_shop/pkg/httperr"
	loggingmw "github.com/Skotchmaster/grocery_shop/pkg/middleware/logging"
)

const apiPrefix = "/api/v1"

type Deps struct {
	ProductURL string
	CartURL    string
}

// New routes /api/v1/products and /api/v1/cart to the product and cart
// services with the /api/v1 prefix stripped.
func New(logger *slog.Logger, d *Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Secure())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	productProxy, err := newProxy(d.ProductURL, apiPrefix)
	if err != nil {
		return nil, err
	}
	cartProxy, err := newProxy(d.CartURL, apiPrefix)
	if err != nil {
		return nil, err
	}

	api := e.Group(apiPrefix)
	api.Any("/products", productProxy)
	api.Any("/products/*", productProxy)
	api.Any("/cart/*", cartProxy)

	return e, nil
}
