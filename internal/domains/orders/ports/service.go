package ports

import (
	"context"

	"github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, actor domain.Actor, productID int64, quantity int32) (*domain.Order, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, orderID int64, target domain.Status) (*domain.Order, error)
	CancelOrder(ctx context.Context, actor domain.Actor, orderID int64, reason string) error
	GetByID(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
}
