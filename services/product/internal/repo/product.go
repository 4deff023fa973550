package repo

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/Skotchmaster/grocery_shop/services/product/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateID       = errors.New("product id already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrQuantityOverflow  = errors.New("quantity out of range")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs keeps the order of ids and skips ids with no row.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) ([]models.Product, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateProduct inserts prod. A zero ID takes the next free id; a taken ID
// fails with ErrDuplicateID.
func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if prod.ID == 0 {
			var maxID int64
			if err := tx.Model(&models.Product{}).Select("COALESCE(MAX(id), 0)").Row().Scan(&maxID); err != nil {
				return err
			}
			prod.ID = maxID + 1
		} else {
			var count int64
			if err := tx.Model(&models.Product{}).Where("id = ?", prod.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateID
			}
		}

		if err := tx.Create(prod).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateID
			}
			return err
		}
		return nil
	})
}

// IncreaseQuantity adds amount under a row lock. A sum past MaxInt64 fails
// with ErrQuantityOverflow and leaves the row untouched.
func (r *GormRepo) IncreaseQuantity(ctx context.Context, id, amount int64) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&prod, id).Error; err != nil {
			return err
		}
		if amount > math.MaxInt64-prod.Quantity {
			return ErrQuantityOverflow
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", id).
			Update("quantity", gorm.Expr("quantity + ?", amount)).Error; err != nil {
			return err
		}
		return tx.First(&prod, id).Error
	}); err != nil {
		return nil, err
	}
	return &prod, nil
}

// DecreaseQuantity subtracts amount under a row lock and refuses to go below
// zero, leaving the row untouched in that case.
func (r *GormRepo) DecreaseQuantity(ctx context.Context, id, amount int64) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&prod, id).Error; err != nil {
			return err
		}
		if prod.Quantity < amount {
			return ErrInsufficientStock
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", id).
			Update("quantity", gorm.Expr("quantity - ?", amount)).Error; err != nil {
			return err
		}
		return tx.First(&prod, id).Error
	}); err != nil {
		return nil, err
	}
	return &prod, nil
}
