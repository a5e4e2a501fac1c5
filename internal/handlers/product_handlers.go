package handlers

import (
	"net/http"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers handles HTTP requests for products
type ProductHandlers struct {
	productService services.ProductService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// ProductRequest is the product payload. Price accepts a JSON number or a
// decimal string.
type ProductRequest struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   *string         `json:"category_id"`
	BillingCycle string          `json:"billing_cycle"`
}

func (r ProductRequest) toModel() (*models.Product, error) {
	categoryID, err := optionalUUID(r.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}
	return &models.Product{
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		CategoryID:   categoryID,
		BillingCycle: models.BillingCycle(r.BillingCycle),
	}, nil
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	product, err := req.toModel()
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.productService.Create(c.Request().Context(), product); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	product, err := h.productService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	product, err := req.toModel()
	if err != nil {
		return common.SendError(c, err)
	}
	product.ID = id
	if err := h.productService.Update(c.Request().Context(), product); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListProducts handles GET /products?category_id=
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	opts, err := listOptions(c)
	if err != nil {
		return common.SendError(c, err)
	}
	categoryID, err := queryUUID(c, "category_id")
	if err != nil {
		return common.SendError(c, err)
	}
	products, err := h.productService.List(c.Request().Context(), categoryID, opts)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(products, opts))
}
