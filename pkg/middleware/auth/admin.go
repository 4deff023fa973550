package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/pkg/tokens"
)

// AdminGuard protects catalogue writes with an HS256 bearer token. With no
// secret configured it lets every request through.
type AdminGuard struct {
	JWTSecret []byte
}

func NewAdminGuard(secret []byte) *AdminGuard {
	return &AdminGuard{JWTSecret: secret}
}

func (m *AdminGuard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m == nil || len(m.JWTSecret) == 0 {
			return next(c)
		}

		raw := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(strings.TrimSpace(token), m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		if claims.Role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}
