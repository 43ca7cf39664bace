package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-shop-api-server/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-shop-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
)

func fixture(t *testing.T, quantity int32) (*Repository, *catalogmemory.ProductRepository, int64) {
	t.Helper()
	products := catalogmemory.NewProductRepository()
	product, err := catalogdomain.NewProduct("webcam", "1080p", decimal.RequireFromString("49.99"), quantity, 1, 1)
	require.NoError(t, err)
	saved, err := products.Save(context.Background(), product)
	require.NoError(t, err)
	return NewRepository(products), products, saved.ID
}

func pendingOrder(t *testing.T, productID int64, quantity int32) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(1, productID, 1, quantity, decimal.RequireFromString("49.99"))
	require.NoError(t, err)
	return order
}

func TestCreateReserving_DecrementsStock(t *testing.T) {
	repo, products, productID := fixture(t, 5)
	ctx := context.Background()

	saved, err := repo.CreateReserving(ctx, pendingOrder(t, productID, 2))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())

	stored, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int32(3), stored.Quantity)
}

func TestCreateReserving_InsufficientStockLeavesNoTrace(t *testing.T) {
	repo, products, productID := fixture(t, 1)
	ctx := context.Background()

	_, err := repo.CreateReserving(ctx, pendingOrder(t, productID, 2))
	var insufficient *ports.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	stored, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int32(1), stored.Quantity)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreateReserving_ConcurrentPlacementAdmitsOne(t *testing.T) {
	repo, products, productID := fixture(t, 2)
	ctx := context.Background()

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateReserving(ctx, pendingOrder(t, productID, 2))
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Equal(t, 1, succeeded)

	stored, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int32(0), stored.Quantity)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestCancelRestoring_RestoresAtMostOnce(t *testing.T) {
	repo, products, productID := fixture(t, 5)
	ctx := context.Background()

	saved, err := repo.CreateReserving(ctx, pendingOrder(t, productID, 3))
	require.NoError(t, err)

	require.NoError(t, saved.Cancel("damaged in cart"))
	cancelled, err := repo.CancelRestoring(ctx, saved)
	require.NoError(t, err)
	require.True(t, cancelled.IsCancelled)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)

	stored, err := products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int32(5), stored.Quantity)

	// The stored row guards restitution, not the caller's copy.
	_, err = repo.CancelRestoring(ctx, saved)
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	stored, err = products.GetByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int32(5), stored.Quantity)
}

func TestCancelRestoring_UnknownOrder(t *testing.T) {
	repo, _, productID := fixture(t, 5)

	ghost := pendingOrder(t, productID, 1)
	ghost.ID = 404
	_, err := repo.CancelRestoring(context.Background(), ghost)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdate_UnknownOrder(t *testing.T) {
	repo, _, productID := fixture(t, 5)

	ghost := pendingOrder(t, productID, 1)
	ghost.ID = 404
	_, err := repo.Update(context.Background(), ghost)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListByUser_FiltersAndSorts(t *testing.T) {
	repo, _, productID := fixture(t, 10)
	ctx := context.Background()

	first, err := repo.CreateReserving(ctx, pendingOrder(t, productID, 1))
	require.NoError(t, err)
	second, err := repo.CreateReserving(ctx, pendingOrder(t, productID, 1))
	require.NoError(t, err)

	other, err := domain.NewOrder(2, productID, 1, 1, decimal.RequireFromString("49.99"))
	require.NoError(t, err)
	_, err = repo.CreateReserving(ctx, other)
	require.NoError(t, err)

	mine, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, first.ID, mine[0].ID)
	require.Equal(t, second.ID, mine[1].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
