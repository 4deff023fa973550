package productclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/grocery_shop/pkg/logging"
)

const (
	increasePath = "/products/quantity/add"
	decreasePath = "/products/quantity/minus"
)

var ErrUpstream = errors.New("product service call failed")

// StatusError is returned when the product service answers with a non-200
// status. It matches ErrUpstream under errors.Is.
type StatusError struct {
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Path, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Path, e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool { return target == ErrUpstream }

type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type quantityRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type quantityResponse struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	http *resty.Client
}

func NewClient(productServiceURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(productServiceURL, "/")).
			SetTimeout(5*time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// DecreaseQuantity reserves amount units of the product.
func (c *Client) DecreaseQuantity(ctx context.Context, productID, amount int64) (*Product, error) {
	return c.adjust(ctx, decreasePath, productID, amount)
}

// IncreaseQuantity returns amount units of the product to inventory.
func (c *Client) IncreaseQuantity(ctx context.Context, productID, amount int64) (*Product, error) {
	return c.adjust(ctx, increasePath, productID, amount)
}

func (c *Client) adjust(ctx context.Context, path string, productID, amount int64) (*Product, error) {
	var (
		result quantityResponse
		apiErr errorResponse
	)

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(quantityRequest{ProductID: productID, Quantity: amount}).
		SetResult(&result).
		SetError(&apiErr)
	if rid := logging.RequestID(ctx); rid != "" {
		req.SetHeader(echo.HeaderXRequestID, rid)
	}

	resp, err := req.Post(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, path, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{Path: path, Code: resp.StatusCode(), Message: apiErr.Error}
	}
	if result.Product == nil {
		return nil, fmt.Errorf("%w: %s: response has no product", ErrUpstream, path)
	}

	return result.Product, nil
}
