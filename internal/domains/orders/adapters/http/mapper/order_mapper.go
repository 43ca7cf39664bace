package mapper

import (
	"time"

	ordersdomain "github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
)

// Order represents the transport-layer shape used by the HTTP handlers.
type Order struct {
	ID           int64
	UserID       int64
	ProductID    int64
	CategoryID   int64
	Quantity     int32
	TotalPrice   string
	Status       string
	IsCancelled  bool
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *ordersdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	return Order{
		ID:           order.ID,
		UserID:       order.UserID,
		ProductID:    order.ProductID,
		CategoryID:   order.CategoryID,
		Quantity:     order.Quantity,
		TotalPrice:   order.TotalPrice.StringFixed(2),
		Status:       string(order.Status),
		IsCancelled:  order.IsCancelled,
		CancelReason: order.CancelReason,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

// FromDomainOrders converts a slice of domain orders to transport representation.
func FromDomainOrders(orders []*ordersdomain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}
