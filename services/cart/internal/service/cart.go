package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/grocery_shop/pkg/events"
	"github.com/Skotchmaster/grocery_shop/pkg/logging"
	"github.com/Skotchmaster/grocery_shop/pkg/productclient"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/models"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/transport"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("cart item not found")
	ErrUpstream   = errors.New("inventory update failed")
)

// ValidationError carries the client-facing reason and matches ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

type Repository interface {
	GetCart(ctx context.Context, userID int64) ([]models.CartItem, error)
	GetItem(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	AddToCart(ctx context.Context, item *models.CartItem) error
	RemoveFromCart(ctx context.Context, userID, productID, amount int64,
		restore func(ctx context.Context, units int64) error) (bool, int64, error)
}

// Inventory reserves and releases product units in the product service.
type Inventory interface {
	DecreaseQuantity(ctx context.Context, productID, amount int64) (*productclient.Product, error)
	IncreaseQuantity(ctx context.Context, productID, amount int64) (*productclient.Product, error)
}

type CartEvent struct {
	Type      string    `json:"type"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Deleted   bool      `json:"deleted,omitempty"`
	At        time.Time `json:"at"`
}

const (
	EventCartItemAdded   = "cart_item_added"
	EventCartItemRemoved = "cart_item_removed"
)

const (
	compensationTimeout = 5 * time.Second
	removeTimeout       = 15 * time.Second
)

type CartService struct {
	Repo      Repository
	Inventory Inventory
	Events    events.Publisher
}

func (s *CartService) GetCart(ctx context.Context, userID int64) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, userID)
}

// AddToCart reserves the units upstream first and only then writes the cart
// line. A failed local write hands the units back before reporting the error.
func (s *CartService) AddToCart(ctx context.Context, userID, productID int64, req transport.QuantityRequest) (*models.CartItem, error) {
	amount, err := validateQuantity(req)
	if err != nil {
		return nil, err
	}

	prod, err := s.Inventory.DecreaseQuantity(ctx, productID, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	item := &models.CartItem{
		ID:       productID,
		UserID:   userID,
		Name:     prod.Name,
		Price:    prod.Price,
		Quantity: amount,
	}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		s.compensate(ctx, productID, amount)
		return nil, fmt.Errorf("save cart item: %w", err)
	}

	saved, err := s.Repo.GetItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}

	s.publish(ctx, CartEvent{Type: EventCartItemAdded, UserID: userID, ProductID: productID, Quantity: amount})
	return saved, nil
}

// RemoveFromCart releases units back to inventory. The cart change is rolled
// back when the product service does not accept them. The transaction is
// detached from the caller's cancellation, and a failed commit after a
// successful restore takes the units again.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID int64, req transport.QuantityRequest) error {
	amount, err := validateQuantity(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), removeTimeout)
	defer cancel()

	var restoredUpstream int64
	restore := func(ctx context.Context, units int64) error {
		if _, err := s.Inventory.IncreaseQuantity(ctx, productID, units); err != nil {
			return fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		restoredUpstream = units
		return nil
	}

	deleted, restored, err := s.Repo.RemoveFromCart(ctx, userID, productID, amount, restore)
	if err != nil {
		if restoredUpstream > 0 {
			s.compensate(ctx, productID, -restoredUpstream)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return err
	}

	s.publish(ctx, CartEvent{
		Type:      EventCartItemRemoved,
		UserID:    userID,
		ProductID: productID,
		Quantity:  restored,
		Deleted:   deleted,
	})
	return nil
}

func validateQuantity(req transport.QuantityRequest) (int64, error) {
	if req.Quantity == nil {
		return 0, &ValidationError{Reason: "Quantity is missing"}
	}
	if *req.Quantity <= 0 {
		return 0, &ValidationError{Reason: "Quantity must be positive"}
	}
	return *req.Quantity, nil
}

// compensate reverts an inventory change whose cart counterpart did not
// commit. A positive delta hands units back, a negative one takes them again.
func (s *CartService) compensate(ctx context.Context, productID, delta int64) {
	l := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	var err error
	if delta > 0 {
		_, err = s.Inventory.IncreaseQuantity(ctx, productID, delta)
	} else {
		_, err = s.Inventory.DecreaseQuantity(ctx, productID, -delta)
	}
	if err != nil {
		l.Error("compensation_failed", "product_id", productID, "delta", delta, "error", err)
		return
	}
	l.Warn("compensation_applied", "product_id", productID, "delta", delta)
}

func (s *CartService) publish(ctx context.Context, ev CartEvent) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	ev.At = time.Now().UTC()
	if err := s.Events.PublishEvent(ctx, events.TopicCartEvents, strconv.FormatInt(ev.UserID, 10), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "type", ev.Type, "user_id", ev.UserID, "error", err)
	}
}
