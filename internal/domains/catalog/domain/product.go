package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyProductName = errors.New("product name is required")
	ErrInvalidPrice     = errors.New("product price is not a valid decimal")
	ErrNegativePrice    = errors.New("product price must not be negative")
	ErrNegativeQuantity = errors.New("product quantity must not be negative")
	ErrInvalidCategory  = errors.New("category id must be greater than zero")
)

// Product is a sellable catalog item. Quantity is the quantity-on-hand
// and is mutated only through the order core's stock primitives once
// the product is live.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int32
	Active      bool
	CategoryID  int64
	CreatedBy   int64
	UpdatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct validates and constructs an active product.
func NewProduct(name, description string, price decimal.Decimal, quantity int32, categoryID, createdBy int64) (*Product, error) {
	product := &Product{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		Quantity:    quantity,
		Active:      true,
		CategoryID:  categoryID,
		CreatedBy:   createdBy,
		UpdatedBy:   createdBy,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Validate enforces invariants on the product.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyProductName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if p.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	return nil
}

// Deactivate takes the product off sale without deleting it.
func (p *Product) Deactivate(updatedBy int64) {
	p.Active = false
	p.UpdatedBy = updatedBy
}
