package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusShipped        Status = "shipped"
	StatusDispatched     Status = "dispatched"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

var (
	ErrInvalidUserID     = errors.New("user id must be greater than zero")
	ErrInvalidProductID  = errors.New("product id must be greater than zero")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrAlreadyCancelled  = errors.New("order is already cancelled")
	ErrInvalidReason     = errors.New("cancellation reason is required and must not exceed 255 characters")
)

// transitions maps each status to the statuses reachable from it.
// Cancellation is reachable from every non-terminal status; delivered
// and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDispatched, StatusOutForDelivery, StatusCancelled},
	StatusDispatched:     {StatusDelivered, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      nil,
	StatusCancelled:      nil,
}

// MaxCancelReasonLength bounds the audit reason recorded on cancellation.
const MaxCancelReasonLength = 255

// Actor identifies who requests an order operation.
type Actor struct {
	UserID int64
	Admin  bool
}

// Order models a purchase order aggregate. TotalPrice is a snapshot
// taken at creation time and is never recomputed from the product.
type Order struct {
	ID           int64
	UserID       int64
	ProductID    int64
	CategoryID   int64
	Quantity     int32
	TotalPrice   decimal.Decimal
	Status       Status
	IsCancelled  bool
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrder validates inputs, prices the order, and constructs it in the
// pending state.
func NewOrder(userID, productID, categoryID int64, quantity int32, unitPrice decimal.Decimal) (*Order, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	total, err := TotalPrice(unitPrice, quantity)
	if err != nil {
		return nil, err
	}
	order := &Order{
		UserID:     userID,
		ProductID:  productID,
		CategoryID: categoryID,
		Quantity:   quantity,
		TotalPrice: total,
		Status:     StatusPending,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.UserID <= 0 {
		return ErrInvalidUserID
	}
	if o.ProductID <= 0 {
		return ErrInvalidProductID
	}
	if o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if o.IsCancelled && o.Status != StatusCancelled {
		return ErrInvalidStatus
	}
	return nil
}

// Terminal reports whether no further transition is permitted.
func (o *Order) Terminal() bool {
	return len(transitions[o.Status]) == 0 && isValidStatus(o.Status)
}

// CanTransitionTo reports whether target is reachable from the current status.
func (o *Order) CanTransitionTo(target Status) bool {
	for _, next := range transitions[o.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition moves the order to target, rejecting unreachable statuses.
// Use Cancel for the cancellation path so the restitution guard applies.
func (o *Order) Transition(target Status) error {
	if !isValidStatus(target) {
		return ErrInvalidStatus
	}
	if target == StatusCancelled {
		return ErrInvalidTransition
	}
	if !o.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	o.Status = target
	return nil
}

// Cancel marks the order cancelled with an audit reason. IsCancelled
// flips exactly once; callers use it to guarantee stock is restored at
// most once per order.
func (o *Order) Cancel(reason string) error {
	if o.IsCancelled {
		return ErrAlreadyCancelled
	}
	if o.Terminal() {
		return ErrInvalidTransition
	}
	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > MaxCancelReasonLength {
		return ErrInvalidReason
	}
	o.Status = StatusCancelled
	o.IsCancelled = true
	o.CancelReason = reason
	return nil
}

// CancellableBy reports whether the actor owns the order or holds the
// admin role.
func (o *Order) CancellableBy(actor Actor) bool {
	return actor.Admin || actor.UserID == o.UserID
}

func isValidStatus(status Status) bool {
	_, ok := transitions[status]
	return ok
}
