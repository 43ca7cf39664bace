package shopserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	cataloghttpmapper "github.com/Apurer/go-shop-api-server/internal/domains/catalog/adapters/http/mapper"
	catalogapp "github.com/Apurer/go-shop-api-server/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-shop-api-server/internal/domains/catalog/ports"
)

// CatalogAPI implements the category and product OpenAPI sections.
// Reads are public; writes need the admin role.
type CatalogAPI struct {
	service catalogports.Service
}

// NewCatalogAPI wires dependencies.
func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

func toTransportCategory(model Category) cataloghttpmapper.Category {
	return cataloghttpmapper.Category{
		ID:          model.Id,
		Name:        model.Name,
		Description: model.Description,
	}
}

func fromTransportCategory(category cataloghttpmapper.Category) Category {
	return Category{
		Id:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func fromTransportCategories(categories []cataloghttpmapper.Category) []Category {
	result := make([]Category, 0, len(categories))
	for _, category := range categories {
		result = append(result, fromTransportCategory(category))
	}
	return result
}

func toTransportProduct(model Product) cataloghttpmapper.Product {
	return cataloghttpmapper.Product{
		ID:          model.Id,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Quantity:    model.Quantity,
		Active:      model.IsActive,
		CategoryID:  model.CategoryId,
	}
}

func fromTransportProduct(product cataloghttpmapper.Product) Product {
	return Product{
		Id:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		IsActive:    product.Active,
		CategoryId:  product.CategoryID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func fromTransportProducts(products []cataloghttpmapper.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, product := range products {
		result = append(result, fromTransportProduct(product))
	}
	return result
}

// Post /v1/categories
// Create a category (admin)
func (api *CatalogAPI) CreateCategory(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}
	var payload Category
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	category := cataloghttpmapper.ToDomainCategory(toTransportCategory(payload), user.ID)
	saved, err := api.service.CreateCategory(c.Request.Context(), category)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromTransportCategory(cataloghttpmapper.FromDomainCategory(saved)))
}

// Put /v1/categories/:categoryId
// Update a category (admin)
func (api *CatalogAPI) UpdateCategory(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}
	categoryID, ok := parseID(c, "categoryId")
	if !ok {
		return
	}
	var payload Category
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	category := cataloghttpmapper.ToDomainCategory(toTransportCategory(payload), user.ID)
	category.ID = categoryID
	updated, err := api.service.UpdateCategory(c.Request.Context(), category)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportCategory(cataloghttpmapper.FromDomainCategory(updated)))
}

// Get /v1/categories/:categoryId
// Get a category by id
func (api *CatalogAPI) GetCategory(c *gin.Context) {
	categoryID, ok := parseID(c, "categoryId")
	if !ok {
		return
	}
	category, err := api.service.GetCategory(c.Request.Context(), categoryID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportCategory(cataloghttpmapper.FromDomainCategory(category)))
}

// Delete /v1/categories/:categoryId
// Delete a category (admin)
func (api *CatalogAPI) DeleteCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	categoryID, ok := parseID(c, "categoryId")
	if !ok {
		return
	}
	if err := api.service.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		respondCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/categories
// List categories
func (api *CatalogAPI) ListCategories(c *gin.Context) {
	categories, err := api.service.ListCategories(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportCategories(cataloghttpmapper.FromDomainCategories(categories)))
}

// Get /v1/categories/:categoryId/products
// List products in a category
func (api *CatalogAPI) ListCategoryProducts(c *gin.Context) {
	categoryID, ok := parseID(c, "categoryId")
	if !ok {
		return
	}
	products, err := api.service.ListProductsByCategory(c.Request.Context(), categoryID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportProducts(cataloghttpmapper.FromDomainProducts(products)))
}

// Post /v1/products
// Create a product (admin)
func (api *CatalogAPI) CreateProduct(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}
	var payload Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := cataloghttpmapper.ToDomainProduct(toTransportProduct(payload), user.ID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	saved, err := api.service.CreateProduct(c.Request.Context(), product)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromTransportProduct(cataloghttpmapper.FromDomainProduct(saved)))
}

// Put /v1/products/:productId
// Update a product (admin). Quantity-on-hand is owned by the order
// flow and ignored here.
func (api *CatalogAPI) UpdateProduct(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	var payload Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := cataloghttpmapper.ToDomainProduct(toTransportProduct(payload), user.ID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product.ID = productID
	updated, err := api.service.UpdateProduct(c.Request.Context(), product)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportProduct(cataloghttpmapper.FromDomainProduct(updated)))
}

// Get /v1/products/:productId
// Get a product by id
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportProduct(cataloghttpmapper.FromDomainProduct(product)))
}

// Delete /v1/products/:productId
// Delete a product (admin)
func (api *CatalogAPI) DeleteProduct(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/products
// List products
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportProducts(cataloghttpmapper.FromDomainProducts(products)))
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, errors.New(param+" must be an integer"))
		return 0, false
	}
	return id, true
}

func respondCatalogError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, catalogports.ErrCategoryNotFound), errors.Is(err, catalogports.ErrProductNotFound):
		respondError(c, http.StatusNotFound, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
