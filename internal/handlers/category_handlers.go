package handlers

import (
	"net/http"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	categoryService services.CategoryService
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

// CategoryRequest represents the category payload
type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	opts, err := listOptions(c)
	if err != nil {
		return common.SendError(c, err)
	}
	categories, err := h.categoryService.List(c.Request().Context(), opts)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(categories, opts))
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := h.categoryService.Create(c.Request().Context(), category); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	category, err := h.categoryService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	category := &models.Category{ID: id, Name: req.Name, Description: req.Description}
	if err := h.categoryService.Update(c.Request().Context(), category); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/:id; products keep existing
// without a category.
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.categoryService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
