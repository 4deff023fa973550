package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/grocery_shop/services/cart/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) GetCart(ctx context.Context, userID int64) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetItem(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND id = ?", userID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddToCart increments an existing line by item.Quantity or inserts item as a
// new line. Name and price of an existing line are left as they are.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND id = ?", item.UserID, item.ID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND id = ?", item.UserID, item.ID).First(item).Error
		}

		return tx.Create(item).Error
	})
}

// RemoveFromCart takes amount units off the line, or the whole line when
// amount covers it, and calls restore with the number of units taken. The
// local change commits only if restore succeeds.
func (r *GormRepo) RemoveFromCart(
	ctx context.Context,
	userID, productID, amount int64,
	restore func(ctx context.Context, units int64) error,
) (deleted bool, restored int64, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND id = ?", userID, productID).
			First(&item).Error; err != nil {
			return err
		}

		if item.Quantity > amount {
			if err := tx.Model(&models.CartItem{}).
				Where("user_id = ? AND id = ?", userID, productID).
				Update("quantity", gorm.Expr("quantity - ?", amount)).Error; err != nil {
				return err
			}
			restored = amount
		} else {
			if err := tx.Where("user_id = ? AND id = ?", userID, productID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			deleted = true
			restored = item.Quantity
		}

		return restore(ctx, restored)
	})
	if err != nil {
		return false, 0, err
	}
	return deleted, restored, nil
}
