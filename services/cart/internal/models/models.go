package models

// CartItem is one product line in a user's cart. Name and Price are copied
// from the product on first add and never refreshed.
type CartItem struct {
	UserID   int64  `gorm:"primaryKey;autoIncrement:false"  json:"userId"`
	ID       int64  `gorm:"primaryKey;autoIncrement:false"  json:"id"`
	Name     string `gorm:"size:100;not null"               json:"name"`
	Price    int64  `gorm:"not null"                        json:"price"`
	Quantity int64  `gorm:"not null;check:quantity > 0"     json:"quantity"`
}

func (c CartItem) TotalPrice() int64 {
	return c.Price * c.Quantity
}

func (CartItem) TableName() string {
	return "cart_items"
}
