package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/pkg/events"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	"github.com/Skotchmaster/grocery_shop/pkg/search"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/models"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/repo"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/transport"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("product not found")
	ErrConflict          = errors.New("product already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ValidationError carries the client-facing reason and matches ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(reason string) error { return &ValidationError{Reason: reason} }

type Repository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	SearchProducts(ctx context.Context, q string, offset, limit int) ([]models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	IncreaseQuantity(ctx context.Context, id, amount int64) (*models.Product, error)
	DecreaseQuantity(ctx context.Context, id, amount int64) (*models.Product, error)
}

// ProductEvent is published to events.TopicProductEvents after a committed change.
type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Price     int64     `json:"price"`
	Quantity  int64     `json:"quantity"`
	Delta     int64     `json:"delta,omitempty"`
	At        time.Time `json:"at"`
}

const (
	EventProductCreated    = "product_created"
	EventQuantityIncreased = "quantity_increased"
	EventQuantityDecreased = "quantity_decreased"
)

// ProductService owns inventory rules. Events and Index are optional.
type ProductService struct {
	Repo   Repository
	Events events.Publisher
	Index  search.Index
}

func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return prod, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	switch {
	case req.Name == nil:
		return nil, invalid("name is missing")
	case req.Price == nil:
		return nil, invalid("price is missing")
	case req.Quantity == nil:
		return nil, invalid("quantity is missing")
	}

	if *req.Name == "" {
		return nil, invalid("name must not be empty")
	}
	if utf8.RuneCountInString(*req.Name) > models.MaxNameLength {
		return nil, invalid(fmt.Sprintf("name must be at most %d characters", models.MaxNameLength))
	}
	if *req.Price < 0 {
		return nil, invalid("price cannot be negative")
	}
	if *req.Quantity < 0 {
		return nil, invalid("quantity cannot be negative")
	}

	prod := &models.Product{
		Name:     *req.Name,
		Price:    *req.Price,
		Quantity: *req.Quantity,
	}
	if req.ProductID != nil {
		if *req.ProductID <= 0 {
			return nil, invalid("product_id must be positive")
		}
		prod.ID = *req.ProductID
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, mapRepoErr(err)
	}

	s.index(ctx, prod)
	s.publish(ctx, EventProductCreated, prod, 0)
	return prod, nil
}

func (s *ProductService) IncreaseQuantity(ctx context.Context, req transport.QuantityRequest) (*models.Product, error) {
	id, amount, err := validateQuantity(req)
	if err != nil {
		return nil, err
	}

	prod, err := s.Repo.IncreaseQuantity(ctx, id, amount)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.publish(ctx, EventQuantityIncreased, prod, amount)
	return prod, nil
}

func (s *ProductService) DecreaseQuantity(ctx context.Context, req transport.QuantityRequest) (*models.Product, error) {
	id, amount, err := validateQuantity(req)
	if err != nil {
		return nil, err
	}

	prod, err := s.Repo.DecreaseQuantity(ctx, id, amount)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.publish(ctx, EventQuantityDecreased, prod, amount)
	return prod, nil
}

// SearchProducts asks the full-text index first and falls back to a name
// match in the store when no index is configured or the index fails.
func (s *ProductService) SearchProducts(ctx context.Context, q string, offset, limit int) ([]models.Product, error) {
	if q == "" {
		return nil, invalid("q is missing")
	}

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return s.Repo.GetProductsByIDs(ctx, ids)
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to store", "error", err)
	}

	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func validateQuantity(req transport.QuantityRequest) (int64, int64, error) {
	if req.ProductID == nil {
		return 0, 0, invalid("product_id is missing")
	}
	if req.Quantity == nil {
		return 0, 0, invalid("quantity is missing")
	}
	if *req.Quantity <= 0 {
		return 0, 0, invalid("quantity must be positive")
	}
	return *req.ProductID, *req.Quantity, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repo.ErrInsufficientStock):
		return fmt.Errorf("%w: %w", ErrInsufficientStock, err)
	case errors.Is(err, repo.ErrDuplicateID):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repo.ErrQuantityOverflow):
		return invalid("quantity is too large")
	default:
		return err
	}
}

func (s *ProductService) index(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	doc := search.Document{ID: prod.ID, Name: prod.Name, Price: prod.Price}
	if err := s.Index.IndexProduct(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", prod.ID, "error", err)
	}
}

func (s *ProductService) publish(ctx context.Context, eventType string, prod *models.Product, delta int64) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	ev := ProductEvent{
		Type:      eventType,
		ProductID: prod.ID,
		Name:      prod.Name,
		Price:     prod.Price,
		Quantity:  prod.Quantity,
		Delta:     delta,
		At:        time.Now().UTC(),
	}
	if err := s.Events.PublishEvent(ctx, events.TopicProductEvents, strconv.FormatInt(prod.ID, 10), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "type", eventType, "product_id", prod.ID, "error", err)
	}
}
