package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/go-shop-api-server/internal/domains/catalog/domain"
)

// Category represents the transport-level category payload.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product represents the transport-level product payload.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       string
	Quantity    int32
	Active      bool
	CategoryID  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToDomainCategory converts a transport category to its domain counterpart.
func ToDomainCategory(model Category, actorID int64) *catalogdomain.Category {
	return &catalogdomain.Category{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedBy:   actorID,
		UpdatedBy:   actorID,
	}
}

// FromDomainCategory converts a domain category to the transport representation.
func FromDomainCategory(category *catalogdomain.Category) Category {
	if category == nil {
		return Category{}
	}
	return Category{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// FromDomainCategories converts a slice of domain categories.
func FromDomainCategories(categories []*catalogdomain.Category) []Category {
	result := make([]Category, 0, len(categories))
	for _, category := range categories {
		result = append(result, FromDomainCategory(category))
	}
	return result
}

// ToDomainProduct converts a transport product to its domain counterpart.
func ToDomainProduct(model Product, actorID int64) (*catalogdomain.Product, error) {
	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, catalogdomain.ErrInvalidPrice
	}
	return &catalogdomain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       price,
		Quantity:    model.Quantity,
		Active:      model.Active,
		CategoryID:  model.CategoryID,
		CreatedBy:   actorID,
		UpdatedBy:   actorID,
	}, nil
}

// FromDomainProduct converts a domain product to the transport representation.
func FromDomainProduct(product *catalogdomain.Product) Product {
	if product == nil {
		return Product{}
	}
	return Product{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Quantity:    product.Quantity,
		Active:      product.Active,
		CategoryID:  product.CategoryID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// FromDomainProducts converts a slice of domain products.
func FromDomainProducts(products []*catalogdomain.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, product := range products {
		result = append(result, FromDomainProduct(product))
	}
	return result
}
