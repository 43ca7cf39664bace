package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-shop-api-server/internal/domains/catalog/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	Save(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Category, error)
}

// ProductRepository persists products. Quantity-on-hand mutations go
// through the order core's stock port, which the catalog adapters also
// implement against the same product state.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
}
