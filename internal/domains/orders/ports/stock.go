package ports

import "context"

// DefaultLowStockThreshold triggers the low-stock observability event
// when a reservation leaves this many units or fewer.
const DefaultLowStockThreshold = 10

// LowStockFunc receives best-effort low-stock events. Implementations
// must not block; stock adapters call it outside their critical section.
type LowStockFunc func(productID int64, remaining int32)

// Stock mutates a product's quantity-on-hand under concurrent access.
// Reserve and Restore are atomic with respect to each other per
// product: concurrent reservations can never overdraw below zero.
// Restore is not idempotent on its own; callers guard it with the
// order's is_cancelled flag.
type Stock interface {
	// Reserve decrements stock by quantity, failing with
	// *InsufficientStockError when fewer units are available and
	// ErrProductNotFound when the product does not exist.
	Reserve(ctx context.Context, productID int64, quantity int32) error
	// Restore increments stock by quantity, failing with
	// ErrProductNotFound when the product no longer exists.
	Restore(ctx context.Context, productID int64, quantity int32) error
}
