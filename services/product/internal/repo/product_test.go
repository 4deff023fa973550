package repo

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
	"github.com/Skotchmaster/grocery_shop/services/product/internal/models"
)

func newSQLiteRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), "", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	t.Cleanup(func() { pkgdb.Close(db) })

	return &GormRepo{DB: db}
}

func seed(t *testing.T, r *GormRepo, products ...models.Product) {
	t.Helper()
	for i := range products {
		require.NoError(t, r.CreateProduct(context.Background(), &products[i]))
	}
}

func TestCreateProduct_CallerSuppliedID(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	prod := models.Product{ID: 42, Name: "Milk", Price: 3, Quantity: 10}
	require.NoError(t, r.CreateProduct(ctx, &prod))

	got, err := r.GetProduct(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, prod, *got)
}

func TestCreateProduct_DuplicateIDIsRejected(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	seed(t, r, models.Product{ID: 1, Name: "Milk", Price: 3, Quantity: 10})

	dup := models.Product{ID: 1, Name: "Bread", Price: 2, Quantity: 5}
	err := r.CreateProduct(ctx, &dup)
	require.ErrorIs(t, err, ErrDuplicateID)

	got, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Name)
}

func TestCreateProduct_AssignsNextID(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	first := models.Product{Name: "Apples", Price: 1, Quantity: 1}
	require.NoError(t, r.CreateProduct(ctx, &first))
	assert.EqualValues(t, 1, first.ID)

	seed(t, r, models.Product{ID: 10, Name: "Pears", Price: 1, Quantity: 1})

	next := models.Product{Name: "Plums", Price: 1, Quantity: 1}
	require.NoError(t, r.CreateProduct(ctx, &next))
	assert.EqualValues(t, 11, next.ID)
}

func TestGetProduct_NotFound(t *testing.T) {
	r := newSQLiteRepo(t)

	_, err := r.GetProduct(context.Background(), 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListProducts_OrderedByID(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	empty, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	seed(t, r,
		models.Product{ID: 3, Name: "C", Price: 1, Quantity: 1},
		models.Product{ID: 1, Name: "A", Price: 1, Quantity: 1},
		models.Product{ID: 2, Name: "B", Price: 1, Quantity: 1},
	)

	items, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{items[0].ID, items[1].ID, items[2].ID})
}

func TestGetProductsByIDs_KeepsRequestedOrder(t *testing.T) {
	r := newSQLiteRepo(t)
	seed(t, r,
		models.Product{ID: 1, Name: "A", Price: 1, Quantity: 1},
		models.Product{ID: 2, Name: "B", Price: 1, Quantity: 1},
		models.Product{ID: 3, Name: "C", Price: 1, Quantity: 1},
	)

	items, err := r.GetProductsByIDs(context.Background(), []int64{3, 99, 1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 3, items[0].ID)
	assert.EqualValues(t, 1, items[1].ID)
}

func TestSearchProducts_CaseInsensitiveAndEscaped(t *testing.T) {
	r := newSQLiteRepo(t)
	seed(t, r,
		models.Product{ID: 1, Name: "Whole Milk", Price: 3, Quantity: 1},
		models.Product{ID: 2, Name: "Oat milk", Price: 4, Quantity: 1},
		models.Product{ID: 3, Name: "Bread", Price: 2, Quantity: 1},
		models.Product{ID: 4, Name: "100% Juice", Price: 5, Quantity: 1},
	)
	ctx := context.Background()

	items, err := r.SearchProducts(ctx, "MILK", 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = r.SearchProducts(ctx, "%", 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 4, items[0].ID)

	items, err = r.SearchProducts(ctx, "milk", 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].ID)
}

func TestIncreaseThenDecreaseRestoresQuantity(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	seed(t, r, models.Product{ID: 1, Name: "Milk", Price: 3, Quantity: 10})

	up, err := r.IncreaseQuantity(ctx, 1, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 17, up.Quantity)

	down, err := r.DecreaseQuantity(ctx, 1, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 10, down.Quantity)
}

func TestIncreaseQuantity_OverflowLeavesRow(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	seed(t, r, models.Product{ID: 1, Name: "Milk", Price: 3, Quantity: 10})

	_, err := r.IncreaseQuantity(ctx, 1, math.MaxInt64-9)
	require.ErrorIs(t, err, ErrQuantityOverflow)

	got, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.Quantity)

	got, err = r.IncreaseQuantity(ctx, 1, math.MaxInt64-10)
	require.NoError(t, err)
	assert.EqualValues(t, int64(math.MaxInt64), got.Quantity)
}

func TestDecreaseQuantity_ToZeroIsAllowed(t *testing.T) {
	r := newSQLiteRepo(t)
	seed(t, r, models.Product{ID: 1, Name: "Milk", Price: 3, Quantity: 4})

	prod, err := r.DecreaseQuantity(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 0, prod.Quantity)
}

func TestDecreaseQuantity_InsufficientStockLeavesRow(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	seed(t, r, models.Product{ID: 1, Name: "Milk", Price: 3, Quantity: 4})

	_, err := r.DecreaseQuantity(ctx, 1, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 4, got.Quantity)
}

func TestQuantityChanges_MissingProduct(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := r.IncreaseQuantity(ctx, 5, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = r.DecreaseQuantity(ctx, 5, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDecreaseQuantity_ConcurrentCallersNeverOversell(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()
	seed(t, r, models.Product{ID: 1, Name: "Milk", Price: 3, Quantity: 10})

	const callers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.DecreaseQuantity(ctx, 1, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	got, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Quantity)
}

func newMockRepo(t *testing.T) (*GormRepo, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return &GormRepo{DB: db}, mock
}

func TestGetProduct_PropagatesStorageFailure(t *testing.T) {
	r, mock := newMockRepo(t)
	boom := errors.New("connection reset by peer")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).WillReturnError(boom)

	_, err := r.GetProduct(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecreaseQuantity_LocksRowAndRollsBackOnFailure(t *testing.T) {
	r, mock := newMockRepo(t)
	boom := errors.New("lock timeout")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" .*FOR UPDATE`).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := r.DecreaseQuantity(context.Background(), 1, 1)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
