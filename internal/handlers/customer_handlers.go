package handlers

import (
	"net/http"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// CustomerHandlers handles customer HTTP requests
type CustomerHandlers struct {
	customerService services.CustomerService
}

// NewCustomerHandlers creates a new customer handlers instance
func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// CustomerRequest is the create and update payload
type CustomerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	WhatsApp *string `json:"whatsapp"`
	Address  *string `json:"address"`
}

func (r CustomerRequest) toModel() *models.Customer {
	return &models.Customer{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		WhatsApp: r.WhatsApp,
		Address:  r.Address,
	}
}

// CreateCustomer handles POST /customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	customer := req.toModel()
	if err := h.customerService.Create(c.Request().Context(), customer); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	customer, err := h.customerService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	customer := req.toModel()
	customer.ID = id
	if err := h.customerService.Update(c.Request().Context(), customer); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /customers/:id
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.customerService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCustomers handles GET /customers?search=
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	opts, err := listOptions(c)
	if err != nil {
		return common.SendError(c, err)
	}
	customers, err := h.customerService.List(c.Request().Context(), c.QueryParam("search"), opts)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(customers, opts))
}
