package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
	"github.com/Apurer/go-shop-api-server/internal/notifications"
)

type fakeOrderRepo struct {
	orders      map[int64]*domain.Order
	stock       map[int64]int32
	nextID      int64
	listCalls   int
	listByCalls int
}

func newFakeOrderRepo(stock map[int64]int32) *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*domain.Order{}, stock: stock}
}

func (f *fakeOrderRepo) CreateReserving(_ context.Context, order *domain.Order) (*domain.Order, error) {
	available, ok := f.stock[order.ProductID]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	if available < order.Quantity {
		return nil, &ports.InsufficientStockError{
			ProductID: order.ProductID,
			Requested: order.Quantity,
			Available: available,
		}
	}
	f.stock[order.ProductID] = available - order.Quantity
	f.nextID++
	copy := *order
	copy.ID = f.nextID
	f.orders[copy.ID] = &copy
	result := copy
	return &result, nil
}

func (f *fakeOrderRepo) CancelRestoring(_ context.Context, order *domain.Order) (*domain.Order, error) {
	stored, ok := f.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.IsCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	f.stock[stored.ProductID] += stored.Quantity
	copy := *order
	f.orders[copy.ID] = &copy
	result := copy
	return &result, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if _, ok := f.orders[order.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	copy := *order
	f.orders[copy.ID] = &copy
	result := copy
	return &result, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := *order
	return &copy, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	f.listByCalls++
	var list []*domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			copy := *order
			list = append(list, &copy)
		}
	}
	return list, nil
}

func (f *fakeOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	f.listCalls++
	list := make([]*domain.Order, 0, len(f.orders))
	for _, order := range f.orders {
		copy := *order
		list = append(list, &copy)
	}
	return list, nil
}

type fakeCatalog struct {
	products map[int64]*ports.Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*ports.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	copy := *product
	return &copy, nil
}

type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.entries[key] = value
}

func (c *mapCache) Delete(_ context.Context, key string) {
	delete(c.entries, key)
}

type recordingNotifier struct {
	events []notifications.Event
}

func (n *recordingNotifier) Enqueue(_ context.Context, event notifications.Event) error {
	n.events = append(n.events, event)
	return nil
}

func newOrderFixture(t *testing.T) (*Service, *fakeOrderRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeOrderRepo(map[int64]int32{10: 5})
	catalog := &fakeCatalog{products: map[int64]*ports.Product{
		10: {ID: 10, CategoryID: 3, Name: "mechanical keyboard", Price: decimal.RequireFromString("19.99"), Quantity: 5, Active: true},
	}}
	notifier := &recordingNotifier{}
	svc := NewService(repo, catalog, WithNotifier(notifier))
	return svc, repo, notifier
}

func TestPlaceOrder_ReservesAndPrices(t *testing.T) {
	svc, repo, notifier := newOrderFixture(t)
	actor := domain.Actor{UserID: 1}

	order, err := svc.PlaceOrder(context.Background(), actor, 10, 3)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, "59.97", order.TotalPrice.StringFixed(2))
	require.Equal(t, int32(2), repo.stock[10])

	require.Len(t, notifier.events, 1)
	require.Equal(t, notifications.KindOrderPlaced, notifier.events[0].Kind)
	require.Equal(t, order.ID, notifier.events[0].OrderID)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	svc, repo, _ := newOrderFixture(t)

	_, err := svc.PlaceOrder(context.Background(), domain.Actor{UserID: 1}, 10, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	require.Equal(t, int32(5), repo.stock[10])
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	svc, _, notifier := newOrderFixture(t)

	_, err := svc.PlaceOrder(context.Background(), domain.Actor{UserID: 1}, 404, 1)
	require.ErrorIs(t, err, ports.ErrProductNotFound)
	require.Empty(t, notifier.events)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	svc, repo, notifier := newOrderFixture(t)

	_, err := svc.PlaceOrder(context.Background(), domain.Actor{UserID: 1}, 10, 6)
	var insufficient *ports.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, int64(10), insufficient.ProductID)
	require.Equal(t, int32(6), insufficient.Requested)
	require.Equal(t, int32(5), insufficient.Available)

	// No partial effect: stock untouched, nothing persisted, no event.
	require.Equal(t, int32(5), repo.stock[10])
	require.Empty(t, repo.orders)
	require.Empty(t, notifier.events)
}

func TestUpdateStatus_RequiresAdmin(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	owner := domain.Actor{UserID: 1}

	placed, err := svc.PlaceOrder(context.Background(), owner, 10, 1)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), owner, placed.ID, domain.StatusConfirmed)
	require.ErrorIs(t, err, ports.ErrUnauthorized)
}

func TestUpdateStatus_AdminTransitions(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	admin := domain.Actor{UserID: 99, Admin: true}

	placed, err := svc.PlaceOrder(context.Background(), domain.Actor{UserID: 1}, 10, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), admin, placed.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), admin, placed.ID, domain.StatusDelivered)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdateStatus_CancellationNotATransition(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	admin := domain.Actor{UserID: 99, Admin: true}

	placed, err := svc.PlaceOrder(context.Background(), domain.Actor{UserID: 1}, 10, 1)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), admin, placed.ID, domain.StatusCancelled)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelOrder_RestoresStockOnce(t *testing.T) {
	svc, repo, notifier := newOrderFixture(t)
	owner := domain.Actor{UserID: 1}

	placed, err := svc.PlaceOrder(context.Background(), owner, 10, 3)
	require.NoError(t, err)
	require.Equal(t, int32(2), repo.stock[10])

	require.NoError(t, svc.CancelOrder(context.Background(), owner, placed.ID, "wrong size"))
	require.Equal(t, int32(5), repo.stock[10])

	cancelled := repo.orders[placed.ID]
	require.True(t, cancelled.IsCancelled)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Equal(t, "wrong size", cancelled.CancelReason)

	require.Len(t, notifier.events, 2)
	require.Equal(t, notifications.KindOrderCancelled, notifier.events[1].Kind)

	err = svc.CancelOrder(context.Background(), owner, placed.ID, "again")
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	require.Equal(t, int32(5), repo.stock[10])
}

func TestCancelOrder_OwnerOrAdminOnly(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	placed, err := svc.PlaceOrder(context.Background(), domain.Actor{UserID: 1}, 10, 1)
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), domain.Actor{UserID: 2}, placed.ID, "not mine")
	require.ErrorIs(t, err, ports.ErrUnauthorized)

	err = svc.CancelOrder(context.Background(), domain.Actor{UserID: 2, Admin: true}, placed.ID, "fraud review")
	require.NoError(t, err)
}

func TestCancelOrder_ReasonRequired(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	owner := domain.Actor{UserID: 1}

	placed, err := svc.PlaceOrder(context.Background(), owner, 10, 1)
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), owner, placed.ID, "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidReason)
}

func TestGetByID_OwnershipEnforced(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	owner := domain.Actor{UserID: 1}

	placed, err := svc.PlaceOrder(context.Background(), owner, 10, 1)
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), owner, placed.ID)
	require.NoError(t, err)
	require.Equal(t, placed.ID, got.ID)

	_, err = svc.GetByID(context.Background(), domain.Actor{UserID: 2}, placed.ID)
	require.ErrorIs(t, err, ports.ErrUnauthorized)

	_, err = svc.GetByID(context.Background(), domain.Actor{UserID: 2, Admin: true}, placed.ID)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), owner, 404)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListForUser_ServedFromCacheUntilInvalidated(t *testing.T) {
	repo := newFakeOrderRepo(map[int64]int32{10: 5})
	catalog := &fakeCatalog{products: map[int64]*ports.Product{
		10: {ID: 10, CategoryID: 3, Name: "mechanical keyboard", Price: decimal.RequireFromString("19.99"), Quantity: 5, Active: true},
	}}
	svc := NewService(repo, catalog, WithCache(newMapCache()))
	owner := domain.Actor{UserID: 1}

	_, err := svc.PlaceOrder(context.Background(), owner, 10, 1)
	require.NoError(t, err)

	first, err := svc.ListForUser(context.Background(), owner.UserID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, repo.listByCalls)

	second, err := svc.ListForUser(context.Background(), owner.UserID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, repo.listByCalls, "second read must hit the cache")

	// A mutation invalidates the listing, so the next read hits the store.
	_, err = svc.PlaceOrder(context.Background(), owner, 10, 1)
	require.NoError(t, err)

	third, err := svc.ListForUser(context.Background(), owner.UserID)
	require.NoError(t, err)
	require.Len(t, third, 2)
	require.Equal(t, 2, repo.listByCalls)
}

func TestListAll_InvalidatedByAnyMutation(t *testing.T) {
	repo := newFakeOrderRepo(map[int64]int32{10: 5})
	catalog := &fakeCatalog{products: map[int64]*ports.Product{
		10: {ID: 10, CategoryID: 3, Name: "mechanical keyboard", Price: decimal.RequireFromString("19.99"), Quantity: 5, Active: true},
	}}
	svc := NewService(repo, catalog, WithCache(newMapCache()))

	_, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	_, err = svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	_, err = svc.PlaceOrder(context.Background(), domain.Actor{UserID: 1}, 10, 1)
	require.NoError(t, err)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, 2, repo.listCalls)
}

type stalledRepo struct {
	fakeOrderRepo
}

func (s *stalledRepo) List(ctx context.Context) ([]*domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestListAll_TimeoutSurfacesAsUnavailable(t *testing.T) {
	repo := &stalledRepo{fakeOrderRepo: *newFakeOrderRepo(map[int64]int32{})}
	svc := NewService(repo, &fakeCatalog{}, WithStoreTimeout(10*time.Millisecond))

	_, err := svc.ListAll(context.Background())
	require.ErrorIs(t, err, ports.ErrUnavailable)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}
