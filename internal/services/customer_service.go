package services

import (
	"context"
	"regexp"
	"strings"

	"subdesk/internal/caching"
	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type CustomerService interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, opts repositories.ListOptions) ([]*models.Customer, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	cacheService caching.CacheService
}

func NewCustomerService(customerRepo repositories.CustomerRepository, cacheService caching.CacheService) CustomerService {
	return &customerService{customerRepo: customerRepo, cacheService: cacheService}
}

func validateCustomer(customer *models.Customer) error {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.Phone = strings.TrimSpace(customer.Phone)

	verr := &common.ValidationError{}
	if customer.Name == "" {
		verr.Add("name", "Name is required")
	}
	if customer.Email == "" {
		verr.Add("email", "Email is required")
	} else if !emailPattern.MatchString(customer.Email) {
		verr.Add("email", "Email is invalid")
	}
	return verr.OrNil()
}

func (s *customerService) Create(ctx context.Context, customer *models.Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}
	customer.ID = uuid.New()
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.cacheService)
	return nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) Update(ctx context.Context, customer *models.Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}
	return s.customerRepo.Update(ctx, customer)
}

func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.cacheService)
	return nil
}

func (s *customerService) List(ctx context.Context, search string, opts repositories.ListOptions) ([]*models.Customer, error) {
	return s.customerRepo.List(ctx, strings.TrimSpace(search), opts)
}

// invalidateDashboard drops cached stats; cache errors never fail a write.
func invalidateDashboard(ctx context.Context, cache caching.CacheService) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateDashboard(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
