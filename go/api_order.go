package shopserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-shop-api-server/internal/domains/orders/adapters/http/mapper"
	ordersapp "github.com/Apurer/go-shop-api-server/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-shop-api-server/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-shop-api-server/internal/shared/errors"
)

// OrderAPI implements the order OpenAPI section.
type OrderAPI struct {
	service ordersports.Service
}

// NewOrderAPI wires dependencies.
func NewOrderAPI(service ordersports.Service) OrderAPI {
	return OrderAPI{service: service}
}

func fromTransportOrder(order orderhttpmapper.Order) Order {
	return Order{
		Id:           order.ID,
		UserId:       order.UserID,
		ProductId:    order.ProductID,
		CategoryId:   order.CategoryID,
		Quantity:     order.Quantity,
		TotalPrice:   order.TotalPrice,
		Status:       order.Status,
		IsCancelled:  order.IsCancelled,
		CancelReason: order.CancelReason,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

func fromTransportOrders(orders []orderhttpmapper.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, fromTransportOrder(order))
	}
	return result
}

// Post /v1/orders
// Place a new order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var payload PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), actorFor(user), payload.ProductId, payload.Quantity)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromTransportOrder(orderhttpmapper.FromDomainOrder(order)))
}

// Get /v1/orders/:orderId
// Get an order by id; customers may only read their own
func (api *OrderAPI) GetOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := api.service.GetByID(c.Request.Context(), actorFor(user), orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportOrder(orderhttpmapper.FromDomainOrder(order)))
}

// Get /v1/orders/my
// List the caller's orders
func (api *OrderAPI) ListMyOrders(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orders, err := api.service.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportOrders(orderhttpmapper.FromDomainOrders(orders)))
}

// Get /v1/orders
// List all orders (admin)
func (api *OrderAPI) ListOrders(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	orders, err := api.service.ListAll(c.Request.Context())
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportOrders(orderhttpmapper.FromDomainOrders(orders)))
}

// Put /v1/orders/:orderId/status
// Advance the delivery status (admin)
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var payload UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), actorFor(user), orderID, ordersdomain.Status(payload.Status))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportOrder(orderhttpmapper.FromDomainOrder(order)))
}

// Post /v1/orders/:orderId/cancel
// Cancel an order (owner or admin)
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var payload CancelOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := api.service.CancelOrder(c.Request.Context(), actorFor(user), orderID, payload.Reason); err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
}

func parseOrderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, errors.New("orderId must be an integer"))
		return 0, false
	}
	return orderID, true
}

func respondOrderError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var insufficient *ordersports.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		respondProblem(c, apierrors.NewInsufficientStockProblem(
			insufficient.ProductID, insufficient.Requested, insufficient.Available))
	case errors.Is(err, ordersdomain.ErrAlreadyCancelled):
		respondProblem(c, apierrors.ErrAlreadyCancelled.WithDetail(err.Error()))
	case errors.Is(err, ordersdomain.ErrInvalidTransition):
		respondProblem(c, apierrors.ErrInvalidTransition.WithDetail(err.Error()))
	case errors.Is(err, ordersapp.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, ordersports.ErrNotFound), errors.Is(err, ordersports.ErrProductNotFound):
		respondError(c, http.StatusNotFound, err)
	case errors.Is(err, ordersports.ErrUnauthorized):
		respondError(c, http.StatusForbidden, err)
	case errors.Is(err, ordersports.ErrUnavailable):
		respondError(c, http.StatusServiceUnavailable, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
