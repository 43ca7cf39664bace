package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
	"github.com/Apurer/go-shop-api-server/internal/notifications"
)

const (
	userOrdersCacheKey  = "user_orders_%d"
	adminOrdersCacheKey = "admin_orders"

	// DefaultCacheTTL bounds staleness of cached order listings.
	DefaultCacheTTL = time.Hour
)

// Service orchestrates the order lifecycle: placement with stock
// reservation, privileged status updates, and cancellation with stock
// restitution.
type Service struct {
	repo     ports.Repository
	catalog  ports.ProductCatalog
	cache    ports.Cache
	notifier notifications.Notifier
	cacheTTL time.Duration
	timeout  time.Duration
}

type Option func(*Service)

// WithCache enables cache-assisted listings and invalidation.
func WithCache(cache ports.Cache) Option {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithNotifier enables asynchronous order event notifications.
func WithNotifier(notifier notifications.Notifier) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithCacheTTL overrides the listing cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithStoreTimeout bounds each repository call; exhausted deadlines
// surface as ErrUnavailable. Zero disables the bound.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

func NewService(repo ports.Repository, catalog ports.ProductCatalog, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		catalog:  catalog,
		cache:    ports.NoopCache,
		notifier: notifications.NoopNotifier,
		cacheTTL: DefaultCacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder validates the request, prices the order against the
// current product price, and persists it in the pending state with its
// stock reserved. Reservation and persistence happen in one atomic
// unit inside the repository; no partial effect survives a failure.
func (s *Service) PlaceOrder(ctx context.Context, actor domain.Actor, productID int64, quantity int32) (*domain.Order, error) {
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	order, err := domain.NewOrder(actor.UserID, product.ID, product.CategoryID, quantity, product.Price)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.createReserving(ctx, order)
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx, saved.UserID)
	_ = s.notifier.Enqueue(ctx, notifications.Event{
		Kind:    notifications.KindOrderPlaced,
		UserID:  saved.UserID,
		OrderID: saved.ID,
		Detail:  product.Name,
	})
	return saved, nil
}

// UpdateStatus applies an admin-driven delivery status transition.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, orderID int64, target domain.Status) (*domain.Order, error) {
	if !actor.Admin {
		return nil, ports.ErrUnauthorized
	}
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Transition(target); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.update(ctx, order)
	if err != nil {
		return nil, err
	}
	s.invalidateListings(ctx, updated.UserID)
	return updated, nil
}

// CancelOrder cancels an order on behalf of its owner or an admin,
// restoring the reserved stock exactly once and recording the reason
// for audit.
func (s *Service) CancelOrder(ctx context.Context, actor domain.Actor, orderID int64, reason string) error {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.CancellableBy(actor) {
		return ports.ErrUnauthorized
	}
	if err := order.Cancel(reason); err != nil {
		return mapError(err)
	}
	cancelled, err := s.cancelRestoring(ctx, order)
	if err != nil {
		return err
	}
	s.invalidateListings(ctx, cancelled.UserID)
	_ = s.notifier.Enqueue(ctx, notifications.Event{
		Kind:    notifications.KindOrderCancelled,
		UserID:  cancelled.UserID,
		OrderID: cancelled.ID,
		Detail:  cancelled.CancelReason,
	})
	return nil
}

// GetByID loads a single order; customers may only read their own.
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CancellableBy(actor) {
		return nil, ports.ErrUnauthorized
	}
	return order, nil
}

// ListForUser returns the user's orders, served from cache when fresh.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	key := fmt.Sprintf(userOrdersCacheKey, userID)
	if orders, ok := s.cachedListing(ctx, key); ok {
		return orders, nil
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	orders, err := s.repo.ListByUser(storeCtx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.cacheListing(ctx, key, orders)
	return orders, nil
}

// ListAll returns every order for admin views, served from cache when fresh.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Order, error) {
	if orders, ok := s.cachedListing(ctx, adminOrdersCacheKey); ok {
		return orders, nil
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	orders, err := s.repo.List(storeCtx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	s.cacheListing(ctx, adminOrdersCacheKey, orders)
	return orders, nil
}

func (s *Service) getProduct(ctx context.Context, productID int64) (*ports.Product, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	product, err := s.catalog.GetProduct(storeCtx, productID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return product, nil
}

func (s *Service) getOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	order, err := s.repo.GetByID(storeCtx, orderID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return order, nil
}

func (s *Service) createReserving(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	saved, err := s.repo.CreateReserving(storeCtx, order)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return saved, nil
}

func (s *Service) cancelRestoring(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	cancelled, err := s.repo.CancelRestoring(storeCtx, order)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return cancelled, nil
}

func (s *Service) update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	updated, err := s.repo.Update(storeCtx, order)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return updated, nil
}

func (s *Service) cachedListing(ctx context.Context, key string) ([]*domain.Order, bool) {
	payload, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var orders []*domain.Order
	if err := json.Unmarshal(payload, &orders); err != nil {
		s.cache.Delete(ctx, key)
		return nil, false
	}
	return orders, true
}

func (s *Service) cacheListing(ctx context.Context, key string, orders []*domain.Order) {
	payload, err := json.Marshal(orders)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, payload, s.cacheTTL)
}

// invalidateListings drops the cached listings affected by a mutation.
// Best-effort: a failed invalidation only means a stale read until TTL
// expiry, never a failed operation.
func (s *Service) invalidateListings(ctx context.Context, userID int64) {
	s.cache.Delete(ctx, fmt.Sprintf(userOrdersCacheKey, userID))
	s.cache.Delete(ctx, adminOrdersCacheKey)
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

var _ ports.Service = (*Service)(nil)
