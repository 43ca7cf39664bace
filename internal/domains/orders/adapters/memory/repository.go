package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. Stock movements
// are delegated to the shared product store so the catalog and the
// order core see one quantity-on-hand; the repository compensates a
// successful reservation when the order write itself fails.
type Repository struct {
	mu     sync.Mutex
	orders map[int64]*domain.Order
	nextID int64
	stock  ports.Stock
}

func NewRepository(stock ports.Stock) *Repository {
	return &Repository{orders: map[int64]*domain.Order{}, stock: stock}
}

func (r *Repository) CreateReserving(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := *order
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	if err := r.stock.Reserve(ctx, clone.ProductID, clone.Quantity); err != nil {
		return nil, err
	}
	saved, err := r.insert(&clone)
	if err != nil {
		// Compensate so a failed order write leaves no stock mutation.
		_ = r.stock.Restore(ctx, clone.ProductID, clone.Quantity)
		return nil, err
	}
	return saved, nil
}

func (r *Repository) CancelRestoring(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	// Re-check the guard against the stored row so a concurrent cancel
	// cannot restore stock twice.
	if stored.IsCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	if err := r.stock.Restore(ctx, stored.ProductID, stored.Quantity); err != nil {
		return nil, err
	}
	clone := *order
	clone.IsCancelled = true
	clone.Status = domain.StatusCancelled
	clone.UpdatedAt = time.Now()
	r.orders[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := *order
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[clone.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	clone.UpdatedAt = time.Now()
	r.orders[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *Repository) ListByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			clone := *order
			list = append(list, &clone)
		}
	}
	sortByID(list)
	return list, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		clone := *order
		list = append(list, &clone)
	}
	sortByID(list)
	return list, nil
}

func (r *Repository) insert(order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == 0 {
		r.nextID++
		order.ID = r.nextID
	} else if order.ID > r.nextID {
		r.nextID = order.ID
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = order
	clone := *order
	return &clone, nil
}

func sortByID(list []*domain.Order) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
