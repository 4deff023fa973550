package models

const MaxNameLength = 100

type Product struct {
	ID       int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name     string `gorm:"size:100;not null"              json:"name"`
	Price    int64  `gorm:"not null"                       json:"price"`
	Quantity int64  `gorm:"not null;check:quantity >= 0"   json:"quantity"`
}

func (Product) TableName() string {
	return "products"
}
