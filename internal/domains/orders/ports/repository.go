package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUnauthorized    = errors.New("actor is not allowed to act on this order")
	ErrUnavailable     = errors.New("storage temporarily unavailable")
)

// InsufficientStockError reports a reservation that would overdraw the
// product's quantity-on-hand.
type InsufficientStockError struct {
	ProductID int64
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, only %d available",
		e.ProductID, e.Requested, e.Available)
}

// Repository persists orders. CreateReserving and CancelRestoring apply
// the stock movement and the order write as a single atomic unit:
// either both take effect or neither does.
type Repository interface {
	// CreateReserving reserves stock for the order's product and
	// persists the order. Fails with *InsufficientStockError or
	// ErrProductNotFound without any partial effect.
	CreateReserving(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// CancelRestoring persists the cancelled order and restores its
	// stock. The is_cancelled guard is re-checked inside the
	// transaction so restitution happens at most once per order.
	CancelRestoring(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update persists status-only changes.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
}
