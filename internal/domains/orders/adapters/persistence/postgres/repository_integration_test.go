//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/go-shop-api-server/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/go-shop-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
	"github.com/Apurer/go-shop-api-server/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("shop_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func seedOrderProduct(t *testing.T, db *gorm.DB, quantity int32) int64 {
	ctx := context.Background()

	category, err := catalogdomain.NewCategory("electronics", "", 1)
	require.NoError(t, err)
	savedCategory, err := catalogpostgres.NewCategoryRepository(db).Save(ctx, category)
	require.NoError(t, err)

	product, err := catalogdomain.NewProduct("ssd drive", "1TB", decimal.RequireFromString("99.99"), quantity, savedCategory.ID, 1)
	require.NoError(t, err)
	saved, err := catalogpostgres.NewProductRepository(db).Save(ctx, product)
	require.NoError(t, err)
	return saved.ID
}

func productQuantity(t *testing.T, db *gorm.DB, productID int64) int32 {
	var quantity int32
	err := db.Table("products").Select("quantity").Where("id = ?", productID).Scan(&quantity).Error
	require.NoError(t, err)
	return quantity
}

func newPendingOrder(t *testing.T, userID, productID int64, quantity int32) *domain.Order {
	order, err := domain.NewOrder(userID, productID, 1, quantity, decimal.RequireFromString("99.99"))
	require.NoError(t, err)
	return order
}

func TestRepository_CreateReserving(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedOrderProduct(t, db, 5)

	saved, err := repo.CreateReserving(ctx, newPendingOrder(t, 1, productID, 2))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, domain.StatusPending, saved.Status)
	assert.Equal(t, "199.98", saved.TotalPrice.StringFixed(2))
	assert.Equal(t, int32(3), productQuantity(t, db, productID))

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, fetched.ID)
	assert.Equal(t, productID, fetched.ProductID)
}

func TestRepository_CreateReserving_InsufficientStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedOrderProduct(t, db, 1)

	_, err := repo.CreateReserving(ctx, newPendingOrder(t, 1, productID, 2))
	var insufficient *ports.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int32(1), insufficient.Available)

	// The rejected reservation leaves no partial effect.
	assert.Equal(t, int32(1), productQuantity(t, db, productID))
	orders, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestRepository_CreateReserving_ConcurrentOverdraw(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedOrderProduct(t, db, 2)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateReserving(ctx, newPendingOrder(t, int64(i+1), productID, 2))
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *ports.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
	}
	assert.Equal(t, 1, succeeded, "row locking admits exactly one reservation of 2 from a stock of 2")
	assert.Equal(t, int32(0), productQuantity(t, db, productID))
}

func TestRepository_CancelRestoring(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedOrderProduct(t, db, 5)

	saved, err := repo.CreateReserving(ctx, newPendingOrder(t, 1, productID, 3))
	require.NoError(t, err)
	assert.Equal(t, int32(2), productQuantity(t, db, productID))

	require.NoError(t, saved.Cancel("ordered by mistake"))
	cancelled, err := repo.CancelRestoring(ctx, saved)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)
	assert.Equal(t, "ordered by mistake", cancelled.CancelReason)
	assert.Equal(t, int32(5), productQuantity(t, db, productID))

	// Restitution happens at most once per order.
	_, err = repo.CancelRestoring(ctx, saved)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, int32(5), productQuantity(t, db, productID))
}

func TestRepository_UpdateStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedOrderProduct(t, db, 5)

	saved, err := repo.CreateReserving(ctx, newPendingOrder(t, 1, productID, 1))
	require.NoError(t, err)

	require.NoError(t, saved.Transition(domain.StatusConfirmed))
	updated, err := repo.Update(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	ghost := newPendingOrder(t, 1, productID, 1)
	ghost.ID = 9999
	_, err = repo.Update(ctx, ghost)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListByUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	productID := seedOrderProduct(t, db, 10)

	for _, userID := range []int64{1, 1, 2} {
		_, err := repo.CreateReserving(ctx, newPendingOrder(t, userID, productID, 1))
		require.NoError(t, err)
	}

	mine, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
