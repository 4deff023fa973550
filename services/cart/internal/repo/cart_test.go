package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/services/cart/internal/models"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), "", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CartItem{}))
	t.Cleanup(func() { pkgdb.Close(db) })

	return &GormRepo{DB: db}
}

func noRestore(context.Context, int64) error { return nil }

func TestAddToCart_CreatesThenIncrements(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	first := &models.CartItem{ID: 1, UserID: 10, Name: "Milk", Price: 3, Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, first))

	again := &models.CartItem{ID: 1, UserID: 10, Name: "Renamed", Price: 99, Quantity: 3}
	require.NoError(t, r.AddToCart(ctx, again))
	assert.EqualValues(t, 5, again.Quantity)
	assert.Equal(t, "Milk", again.Name)
	assert.EqualValues(t, 3, again.Price)

	items, err := r.GetCart(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0].Quantity)
}

func TestGetCart_ScopedToUser(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddToCart(ctx, &models.CartItem{ID: 2, UserID: 1, Name: "Bread", Price: 2, Quantity: 1}))
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{ID: 1, UserID: 1, Name: "Milk", Price: 3, Quantity: 1}))
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{ID: 1, UserID: 2, Name: "Milk", Price: 3, Quantity: 4}))

	items, err := r.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 1, items[0].ID)
	assert.EqualValues(t, 2, items[1].ID)

	empty, err := r.GetCart(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRemoveFromCart_Partial(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{ID: 1, UserID: 1, Name: "Milk", Price: 3, Quantity: 5}))

	var gotUnits int64
	deleted, restored, err := r.RemoveFromCart(ctx, 1, 1, 2, func(_ context.Context, units int64) error {
		gotUnits = units
		return nil
	})
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.EqualValues(t, 2, restored)
	assert.EqualValues(t, 2, gotUnits)

	item, err := r.GetItem(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, item.Quantity)
}

func TestRemoveFromCart_OvershootDeletesAndRestoresHeldUnits(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{ID: 1, UserID: 1, Name: "Milk", Price: 3, Quantity: 3}))

	deleted, restored, err := r.RemoveFromCart(ctx, 1, 1, 10, noRestore)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.EqualValues(t, 3, restored)

	_, err = r.GetItem(ctx, 1, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveFromCart_RestoreFailureRollsBack(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.AddToCart(ctx, &models.CartItem{ID: 1, UserID: 1, Name: "Milk", Price: 3, Quantity: 3}))

	boom := errors.New("product service down")
	for _, amount := range []int64{1, 3} {
		_, _, err := r.RemoveFromCart(ctx, 1, 1, amount, func(context.Context, int64) error { return boom })
		require.ErrorIs(t, err, boom)

		item, err := r.GetItem(ctx, 1, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 3, item.Quantity)
	}
}

func TestRemoveFromCart_MissingLine(t *testing.T) {
	r := newRepo(t)

	called := false
	_, _, err := r.RemoveFromCart(context.Background(), 1, 1, 1, func(context.Context, int64) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.False(t, called)
}
