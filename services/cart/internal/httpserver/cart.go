package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/service"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is not an integer")
	}
	return id, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	userID, err := pathID(c, "user_id")
	if err != nil {
		l.Warn("get_cart_error", "status", 400, "reason", "user_id is not an integer")
		return err
	}

	items, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	return c.JSON(http.StatusOK, transport.NewCartResponse(items))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	userID, err := pathID(c, "user_id")
	if err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "user_id is not an integer")
		return err
	}
	productID, err := pathID(c, "product_id")
	if err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "product_id is not an integer")
		return err
	}

	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddToCart(ctx, userID, productID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("add_to_cart_error", "status", 400, "reason", err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUpstream):
			l.Warn("add_to_cart_error", "status", 400, "reason", "product service rejected reservation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to update product quantity")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("add_to_cart_error", "status", 404, "reason", "cart item not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "cart item not found")
		default:
			l.Error("add_to_cart_error", "status", 500, "reason", "cannot save cart item", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot save cart item")
		}
	}

	l.Info("add_to_cart_success", "user_id", userID, "product_id", productID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.AddToCartResponse{
		Message:  "Added new item!",
		ID:       item.ID,
		UserID:   item.UserID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: item.Quantity,
	})
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_from_cart")

	userID, err := pathID(c, "user_id")
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "reason", "user_id is not an integer")
		return err
	}
	productID, err := pathID(c, "product_id")
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "reason", "product_id is not an integer")
		return err
	}

	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.RemoveFromCart(ctx, userID, productID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("remove_from_cart_error", "status", 400, "reason", err.Error())
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("remove_from_cart_error", "status", 404, "reason", "product not in cart")
			return echo.NewHTTPError(http.StatusNotFound, "Product not found in cart")
		case errors.Is(err, service.ErrUpstream):
			l.Warn("remove_from_cart_error", "status", 400, "reason", "product service rejected restore", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to update product quantity in inventory")
		default:
			l.Error("remove_from_cart_error", "status", 500, "reason", "cannot update cart", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
		}
	}

	l.Info("remove_from_cart_success", "user_id", userID, "product_id", productID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product quantity updated or removed from cart"})
}
