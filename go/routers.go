package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// Routes is the list of the generated Route.
type Routes []Route

// ApiHandleFunctions bundles the per-section handler implementations.
type ApiHandleFunctions struct {
	CatalogAPI CatalogAPI
	OrderAPI   OrderAPI
	UserAPI    UserAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, middleware...)
}

// NewRouterWithGinEngine adds the API routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router.Use(middleware...)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandler
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

func defaultHandler(c *gin.Context) {
	c.Status(http.StatusNotImplemented)
}

func getRoutes(handleFunctions ApiHandleFunctions) Routes {
	return Routes{
		{
			"PlaceOrder",
			http.MethodPost,
			"/v1/orders",
			handleFunctions.OrderAPI.PlaceOrder,
		},
		{
			"ListOrders",
			http.MethodGet,
			"/v1/orders",
			handleFunctions.OrderAPI.ListOrders,
		},
		{
			"ListMyOrders",
			http.MethodGet,
			"/v1/orders/my",
			handleFunctions.OrderAPI.ListMyOrders,
		},
		{
			"GetOrder",
			http.MethodGet,
			"/v1/orders/:orderId",
			handleFunctions.OrderAPI.GetOrder,
		},
		{
			"UpdateOrderStatus",
			http.MethodPut,
			"/v1/orders/:orderId/status",
			handleFunctions.OrderAPI.UpdateOrderStatus,
		},
		{
			"CancelOrder",
			http.MethodPost,
			"/v1/orders/:orderId/cancel",
			handleFunctions.OrderAPI.CancelOrder,
		},
		{
			"CreateCategory",
			http.MethodPost,
			"/v1/categories",
			handleFunctions.CatalogAPI.CreateCategory,
		},
		{
			"ListCategories",
			http.MethodGet,
			"/v1/categories",
			handleFunctions.CatalogAPI.ListCategories,
		},
		{
			"GetCategory",
			http.MethodGet,
			"/v1/categories/:categoryId",
			handleFunctions.CatalogAPI.GetCategory,
		},
		{
			"UpdateCategory",
			http.MethodPut,
			"/v1/categories/:categoryId",
			handleFunctions.CatalogAPI.UpdateCategory,
		},
		{
			"DeleteCategory",
			http.MethodDelete,
			"/v1/categories/:categoryId",
			handleFunctions.CatalogAPI.DeleteCategory,
		},
		{
			"ListCategoryProducts",
			http.MethodGet,
			"/v1/categories/:categoryId/products",
			handleFunctions.CatalogAPI.ListCategoryProducts,
		},
		{
			"CreateProduct",
			http.MethodPost,
			"/v1/products",
			handleFunctions.CatalogAPI.CreateProduct,
		},
		{
			"ListProducts",
			http.MethodGet,
			"/v1/products",
			handleFunctions.CatalogAPI.ListProducts,
		},
		{
			"GetProduct",
			http.MethodGet,
			"/v1/products/:productId",
			handleFunctions.CatalogAPI.GetProduct,
		},
		{
			"UpdateProduct",
			http.MethodPut,
			"/v1/products/:productId",
			handleFunctions.CatalogAPI.UpdateProduct,
		},
		{
			"DeleteProduct",
			http.MethodDelete,
			"/v1/products/:productId",
			handleFunctions.CatalogAPI.DeleteProduct,
		},
		{
			"CreateUser",
			http.MethodPost,
			"/v1/users",
			handleFunctions.UserAPI.CreateUser,
		},
		{
			"CreateUsersWithListInput",
			http.MethodPost,
			"/v1/users/createWithList",
			handleFunctions.UserAPI.CreateUsersWithListInput,
		},
		{
			"LoginUser",
			http.MethodGet,
			"/v1/users/login",
			handleFunctions.UserAPI.LoginUser,
		},
		{
			"LogoutUser",
			http.MethodGet,
			"/v1/users/logout",
			handleFunctions.UserAPI.LogoutUser,
		},
		{
			"GetUserByName",
			http.MethodGet,
			"/v1/users/:username",
			handleFunctions.UserAPI.GetUserByName,
		},
		{
			"UpdateUser",
			http.MethodPut,
			"/v1/users/:username",
			handleFunctions.UserAPI.UpdateUser,
		},
		{
			"DeleteUser",
			http.MethodDelete,
			"/v1/users/:username",
			handleFunctions.UserAPI.DeleteUser,
		},
	}
}
