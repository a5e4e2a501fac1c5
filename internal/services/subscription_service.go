package services

import (
	"context"
	"errors"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/caching"
	"subdesk/internal/common"
	"subdesk/internal/metrics"
	"subdesk/internal/models"
	"subdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SubscriptionInput is the create/update payload. EndDate is only honoured
// on update; on create it is derived from the product's billing cycle.
type SubscriptionInput struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	StartDate  time.Time
	EndDate    *time.Time
	Status     models.SubscriptionStatus
	AutoRenew  *bool
}

// LapsedResult summarises one ProcessLapsed run.
type LapsedResult struct {
	Renewed int `json:"renewed"`
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

type SubscriptionService interface {
	Create(ctx context.Context, in SubscriptionInput) (*models.Subscription, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionDetail, error)
	Update(ctx context.Context, id uuid.UUID, in SubscriptionInput) (*models.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repositories.SubscriptionFilter, opts repositories.ListOptions) ([]*models.SubscriptionDetail, error)
	ListExpiring(ctx context.Context, days int) ([]*models.SubscriptionDetail, error)
	ProcessLapsed(ctx context.Context, reference time.Time) (*LapsedResult, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	customerRepo     repositories.CustomerRepository
	productRepo      repositories.ProductRepository
	cacheService     caching.CacheService
	now              func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	customerRepo repositories.CustomerRepository,
	productRepo repositories.ProductRepository,
	cacheService caching.CacheService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		customerRepo:     customerRepo,
		productRepo:      productRepo,
		cacheService:     cacheService,
		now:              time.Now,
	}
}

// references loads the product and checks the customer, reporting missing
// rows against the input field.
func (s *subscriptionService) references(ctx context.Context, in SubscriptionInput) (*models.Product, error) {
	if _, err := s.customerRepo.GetByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewValidationError("customer_id", "Customer does not exist")
		}
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewValidationError("product_id", "Product does not exist")
		}
		return nil, err
	}
	return product, nil
}

func validateSubscriptionInput(in SubscriptionInput) *common.ValidationError {
	verr := &common.ValidationError{}
	if in.CustomerID == uuid.Nil {
		verr.Add("customer_id", "Customer is required")
	}
	if in.ProductID == uuid.Nil {
		verr.Add("product_id", "Product is required")
	}
	if in.StartDate.IsZero() {
		verr.Add("start_date", "Start date is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		verr.Add("status", "Status must be active, expired or cancelled")
	}
	return verr
}

func (s *subscriptionService) Create(ctx context.Context, in SubscriptionInput) (*models.Subscription, error) {
	if err := validateSubscriptionInput(in).OrNil(); err != nil {
		return nil, err
	}
	product, err := s.references(ctx, in)
	if err != nil {
		return nil, err
	}

	start := billing.DateOf(in.StartDate)
	sub := &models.Subscription{
		ID:         uuid.New(),
		CustomerID: in.CustomerID,
		ProductID:  in.ProductID,
		StartDate:  start,
		EndDate:    billing.Advance(start, product.BillingCycle),
		Status:     models.SubscriptionStatusActive,
		AutoRenew:  true,
	}
	if in.Status != "" {
		sub.Status = in.Status
	}
	if in.AutoRenew != nil {
		sub.AutoRenew = *in.AutoRenew
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.cacheService)
	return sub, nil
}

func (s *subscriptionService) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionDetail, error) {
	return s.subscriptionRepo.GetDetail(ctx, id)
}

func (s *subscriptionService) Update(ctx context.Context, id uuid.UUID, in SubscriptionInput) (*models.Subscription, error) {
	verr := validateSubscriptionInput(in)
	if in.EndDate == nil || in.EndDate.IsZero() {
		verr.Add("end_date", "End date is required")
	} else if !in.StartDate.IsZero() && !billing.DateOf(*in.EndDate).After(billing.DateOf(in.StartDate)) {
		verr.Add("end_date", "End date must be after start date")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.references(ctx, in); err != nil {
		return nil, err
	}

	sub.CustomerID = in.CustomerID
	sub.ProductID = in.ProductID
	sub.StartDate = billing.DateOf(in.StartDate)
	sub.EndDate = billing.DateOf(*in.EndDate)
	if in.Status != "" {
		sub.Status = in.Status
	}
	if in.AutoRenew != nil {
		sub.AutoRenew = *in.AutoRenew
	}

	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.cacheService)
	return sub, nil
}

func (s *subscriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.subscriptionRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateDashboard(ctx, s.cacheService)
	return nil
}

func (s *subscriptionService) List(ctx context.Context, filter repositories.SubscriptionFilter, opts repositories.ListOptions) ([]*models.SubscriptionDetail, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, common.NewValidationError("status", "Status must be active, expired or cancelled")
	}
	return s.subscriptionRepo.List(ctx, filter, opts)
}

// ListExpiring returns active subscriptions ending within days of today.
func (s *subscriptionService) ListExpiring(ctx context.Context, days int) ([]*models.SubscriptionDetail, error) {
	if days < 0 {
		return nil, common.NewValidationError("days", "Days must not be negative")
	}
	today := billing.DateOf(s.now())
	return s.subscriptionRepo.ListExpiring(ctx, today, today.AddDate(0, 0, days), 0)
}

// ProcessLapsed renews or expires active subscriptions whose period ended
// before reference. A failure on one subscription does not stop the run.
func (s *subscriptionService) ProcessLapsed(ctx context.Context, reference time.Time) (*LapsedResult, error) {
	lapsed, err := s.subscriptionRepo.ListLapsed(ctx, billing.DateOf(reference))
	if err != nil {
		return nil, err
	}

	result := &LapsedResult{}
	for _, d := range lapsed {
		logger := log.With().Str("subscription_id", d.ID.String()).Logger()
		if d.AutoRenew {
			start, end := billing.Renew(&d.Subscription, d.Product.BillingCycle, reference)
			if err := s.subscriptionRepo.Renew(ctx, d.ID, start, end); err != nil {
				logger.Error().Err(err).Msg("failed to renew subscription")
				result.Failed++
				continue
			}
			logger.Info().Time("start_date", start).Time("end_date", end).Msg("subscription renewed")
			metrics.SubscriptionsRenewedTotal.Inc()
			result.Renewed++
			continue
		}
		if err := s.subscriptionRepo.Expire(ctx, d.ID); err != nil {
			logger.Error().Err(err).Msg("failed to expire subscription")
			result.Failed++
			continue
		}
		logger.Info().Msg("subscription expired")
		metrics.SubscriptionsExpiredTotal.Inc()
		result.Expired++
	}

	if result.Renewed+result.Expired > 0 {
		invalidateDashboard(ctx, s.cacheService)
	}
	return result, nil
}
