package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/grocery_shop/pkg/httperr"
	middleware "github.com/Skotchmaster/grocery_shop/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/grocery_shop/pkg/middleware/logging"
)

type Deps struct {
	ProductHandler *ProductHTTP
	AdminGuard     *middleware.AdminGuard
	Ready          func(ctx context.Context) error
}

// New builds the echo instance with the shared middleware chain and routes.
func New(logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.AdminGuard.RequireAdmin)
	products.POST("/quantity/add", d.ProductHandler.IncreaseQuantity)
	products.POST("/quantity/minus", d.ProductHandler.DecreaseQuantity)
}
