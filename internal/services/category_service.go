package services

import (
	"context"
	"strings"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/repositories"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, opts repositories.ListOptions) ([]*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func validateCategory(category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return common.NewValidationError("name", "Category name is required")
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, category *models.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	category.ID = uuid.New()
	return s.categoryRepo.Create(ctx, category)
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

func (s *categoryService) Update(ctx context.Context, category *models.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.categoryRepo.Update(ctx, category)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *categoryService) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, opts)
}
