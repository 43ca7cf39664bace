package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot the order workflow prices against.
type Product struct {
	ID         int64
	CategoryID int64
	Name       string
	Price      decimal.Decimal
	Quantity   int32
	Active     bool
}

// ProductCatalog exposes the product fields the order core needs.
type ProductCatalog interface {
	// GetProduct fails with ErrProductNotFound when the id is unknown.
	GetProduct(ctx context.Context, id int64) (*Product, error)
}
