package transport

import "github.com/Skotchmaster/grocery_shop/services/product/internal/models"

// Pointer fields tell an omitted value apart from an explicit zero.
type CreateProductRequest struct {
	ProductID *int64  `json:"product_id"`
	Name      *string `json:"name"`
	Price     *int64  `json:"price"`
	Quantity  *int64  `json:"quantity"`
}

type QuantityRequest struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

type ProductResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

type ProductsResponse struct {
	Products []models.Product `json:"products"`
}
