package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/go-shop-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/catalog/ports"
	ordersports "github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
)

var (
	_ ports.CategoryRepository   = (*CategoryRepository)(nil)
	_ ports.ProductRepository    = (*ProductRepository)(nil)
	_ ordersports.Stock          = (*ProductRepository)(nil)
	_ ordersports.ProductCatalog = (*ProductRepository)(nil)
)

// CategoryRepository is an in-memory category persistence adapter.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[int64]*domain.Category
	nextID     int64
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: map[int64]*domain.Category{}}
}

func (r *CategoryRepository) Save(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	clone := *category
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.categories[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, ports.ErrCategoryNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ports.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *CategoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		clone := *category
		list = append(list, &clone)
	}
	return list, nil
}

// ProductRepository is an in-memory product persistence adapter. It
// doubles as the order core's stock and product-catalog collaborator so
// the memory wiring shares one source of truth for quantity-on-hand.
type ProductRepository struct {
	mu        sync.RWMutex
	products  map[int64]*domain.Product
	nextID    int64
	lowStock  ordersports.LowStockFunc
	threshold int32
}

type ProductOption func(*ProductRepository)

// WithLowStockFunc registers a best-effort callback fired after a
// reservation leaves stock at or below the threshold.
func WithLowStockFunc(fn ordersports.LowStockFunc) ProductOption {
	return func(r *ProductRepository) {
		r.lowStock = fn
	}
}

// WithLowStockThreshold overrides the low-stock boundary.
func WithLowStockThreshold(threshold int32) ProductOption {
	return func(r *ProductRepository) {
		if threshold > 0 {
			r.threshold = threshold
		}
	}
}

func NewProductRepository(opts ...ProductOption) *ProductRepository {
	r := &ProductRepository{
		products:  map[int64]*domain.Product{},
		threshold: ordersports.DefaultLowStockThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *ProductRepository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.products[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		clone := *product
		list = append(list, &clone)
	}
	return list, nil
}

func (r *ProductRepository) ListByCategory(_ context.Context, categoryID int64) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Product
	for _, product := range r.products {
		if product.CategoryID == categoryID {
			clone := *product
			list = append(list, &clone)
		}
	}
	return list, nil
}

// GetProduct exposes the catalog snapshot the order core prices against.
func (r *ProductRepository) GetProduct(_ context.Context, id int64) (*ordersports.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ordersports.ErrProductNotFound
	}
	return &ordersports.Product{
		ID:         product.ID,
		CategoryID: product.CategoryID,
		Name:       product.Name,
		Price:      product.Price,
		Quantity:   product.Quantity,
		Active:     product.Active,
	}, nil
}

// Reserve atomically decrements stock, never below zero. The check and
// the decrement happen under one lock so concurrent reservations
// serialize.
func (r *ProductRepository) Reserve(_ context.Context, productID int64, quantity int32) error {
	r.mu.Lock()
	product, ok := r.products[productID]
	if !ok {
		r.mu.Unlock()
		return ordersports.ErrProductNotFound
	}
	if product.Quantity < quantity {
		available := product.Quantity
		r.mu.Unlock()
		return &ordersports.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: available,
		}
	}
	product.Quantity -= quantity
	remaining := product.Quantity
	r.mu.Unlock()
	if remaining <= r.threshold && r.lowStock != nil {
		r.lowStock(productID, remaining)
	}
	return nil
}

// Restore atomically returns previously reserved stock.
func (r *ProductRepository) Restore(_ context.Context, productID int64, quantity int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[productID]
	if !ok {
		return ordersports.ErrProductNotFound
	}
	product.Quantity += quantity
	return nil
}
