package transport

import "github.com/Skotchmaster/grocery_shop/services/cart/internal/models"

type QuantityRequest struct {
	Quantity *int64 `json:"quantity"`
}

type CartItemResponse struct {
	models.CartItem
	TotalPrice int64 `json:"total_price"`
}

type CartResponse struct {
	ItemsInCart []CartItemResponse `json:"items_in_cart"`
	Total       int64              `json:"total"`
}

type AddToCartResponse struct {
	Message  string `json:"message"`
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewCartResponse(items []models.CartItem) CartResponse {
	resp := CartResponse{ItemsInCart: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		line := CartItemResponse{CartItem: it, TotalPrice: it.TotalPrice()}
		resp.ItemsInCart = append(resp.ItemsInCart, line)
		resp.Total += line.TotalPrice
	}
	return resp
}
