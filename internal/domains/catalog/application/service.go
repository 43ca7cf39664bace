package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-shop-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/catalog/ports"
)

// Service orchestrates catalog use cases.
type Service struct {
	categories ports.CategoryRepository
	products   ports.ProductRepository
}

func NewService(categories ports.CategoryRepository, products ports.ProductRepository) *Service {
	return &Service{categories: categories, products: products}
}

func (s *Service) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	if err := category.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.categories.Save(ctx, category)
}

func (s *Service) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	existing, err := s.categories.GetByID(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	category.CreatedBy = existing.CreatedBy
	if err := category.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.categories.Save(ctx, category)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, mapError(err)
	}
	if _, err := s.categories.GetByID(ctx, product.CategoryID); err != nil {
		return nil, err
	}
	return s.products.Save(ctx, product)
}

// UpdateProduct overrides descriptive fields and price. The persisted
// quantity-on-hand wins over the payload so catalog edits cannot race
// concurrent order reservations.
func (s *Service) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	existing, err := s.products.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Quantity = existing.Quantity
	product.CreatedBy = existing.CreatedBy
	if err := product.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.products.Save(ctx, product)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *Service) ListProductsByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	return s.products.ListByCategory(ctx, categoryID)
}

var _ ports.Service = (*Service)(nil)
