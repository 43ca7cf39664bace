package shopserver

import "time"

// Order is the wire representation of an order.
type Order struct {
	Id           int64     `json:"id,omitempty"`
	UserId       int64     `json:"userId,omitempty"`
	ProductId    int64     `json:"productId"`
	CategoryId   int64     `json:"categoryId,omitempty"`
	Quantity     int32     `json:"quantity"`
	TotalPrice   string    `json:"totalPrice,omitempty"`
	Status       string    `json:"status,omitempty"`
	IsCancelled  bool      `json:"isCancelled,omitempty"`
	CancelReason string    `json:"cancelReason,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// PlaceOrderRequest is the payload for creating an order.
type PlaceOrderRequest struct {
	ProductId int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// UpdateOrderStatusRequest moves an order along its delivery lifecycle.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// CancelOrderRequest carries the auditable cancellation reason.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// Category is the wire representation of a product category.
type Category struct {
	Id          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Product is the wire representation of a catalog product.
type Product struct {
	Id          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	Quantity    int32     `json:"quantity"`
	IsActive    bool      `json:"isActive"`
	CategoryId  int64     `json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// User is the wire representation of an account. Password is accepted
// on input and never echoed back.
type User struct {
	Id        int64     `json:"id,omitempty"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"password,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	LastSeen  time.Time `json:"lastSeen,omitempty"`
}
