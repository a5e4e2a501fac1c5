package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/caching"
	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const productCacheTTL = 15 * time.Minute

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, categoryID *uuid.UUID, opts repositories.ListOptions) ([]*models.Product, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	cacheService caching.CacheService
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, cacheService caching.CacheService) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheService: cacheService,
	}
}

func (s *productService) validate(ctx context.Context, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)

	verr := &common.ValidationError{}
	if product.Name == "" {
		verr.Add("name", "Product name is required")
	}
	if !product.Price.IsPositive() {
		verr.Add("price", "Price must be greater than 0")
	}
	if cycle, err := billing.ParseBillingCycle(string(product.BillingCycle)); err != nil {
		verr.Add("billing_cycle", "Billing cycle must be monthly, quarterly or yearly")
	} else {
		product.BillingCycle = cycle
	}
	if !verr.Empty() {
		return verr
	}

	if product.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *product.CategoryID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewValidationError("category_id", "Category does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if err := s.validate(ctx, product); err != nil {
		return err
	}
	product.ID = uuid.New()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.cacheService)
	return nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	// Try to get from cache first
	if cached, err := s.cacheService.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		// cache errors shouldn't fail the operation
		log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache read failed")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetProduct(ctx, product, productCacheTTL); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("failed to cache product")
	}
	return product, nil
}

// Update changes product details. Existing subscriptions keep their periods;
// a new billing cycle applies from their next renewal.
func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if err := s.validate(ctx, product); err != nil {
		return err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	s.evict(ctx, product.ID)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	invalidateDashboard(ctx, s.cacheService)
	return nil
}

func (s *productService) List(ctx context.Context, categoryID *uuid.UUID, opts repositories.ListOptions) ([]*models.Product, error) {
	return s.productRepo.List(ctx, categoryID, opts)
}

func (s *productService) evict(ctx context.Context, id uuid.UUID) {
	if err := s.cacheService.DeleteProduct(ctx, id); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("failed to evict cached product")
	}
}
