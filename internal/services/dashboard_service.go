package services

import (
	"context"
	"time"

	"subdesk/internal/billing"
	"subdesk/internal/caching"
	"subdesk/internal/models"
	"subdesk/internal/repositories"

	"github.com/rs/zerolog/log"
)

const (
	dashboardStatsTTL    = time.Minute
	dashboardListSize    = 10
	upcomingRenewalsDays = 7
)

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	RecentActivity(ctx context.Context) ([]*models.SubscriptionDetail, error)
	UpcomingRenewals(ctx context.Context) ([]*models.SubscriptionDetail, error)
}

type dashboardService struct {
	customerRepo     repositories.CustomerRepository
	productRepo      repositories.ProductRepository
	subscriptionRepo repositories.SubscriptionRepository
	reminderRepo     repositories.ReminderRepository
	cacheService     caching.CacheService
	now              func() time.Time
}

func NewDashboardService(
	customerRepo repositories.CustomerRepository,
	productRepo repositories.ProductRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	reminderRepo repositories.ReminderRepository,
	cacheService caching.CacheService,
) DashboardService {
	return &dashboardService{
		customerRepo:     customerRepo,
		productRepo:      productRepo,
		subscriptionRepo: subscriptionRepo,
		reminderRepo:     reminderRepo,
		cacheService:     cacheService,
		now:              time.Now,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if cached, err := s.cacheService.GetDashboardStats(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard cache read failed")
	}

	var (
		stats models.DashboardStats
		err   error
	)
	if stats.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveSubscriptions, err = s.subscriptionRepo.CountByStatus(ctx, models.SubscriptionStatusActive); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingReminders, err = s.reminderRepo.CountPending(ctx); err != nil {
		return nil, err
	}

	if err := s.cacheService.SetDashboardStats(ctx, &stats, dashboardStatsTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache dashboard stats")
	}
	return &stats, nil
}

func (s *dashboardService) RecentActivity(ctx context.Context) ([]*models.SubscriptionDetail, error) {
	return s.subscriptionRepo.ListRecent(ctx, dashboardListSize)
}

func (s *dashboardService) UpcomingRenewals(ctx context.Context) ([]*models.SubscriptionDetail, error) {
	today := billing.DateOf(s.now())
	return s.subscriptionRepo.ListExpiring(ctx, today, today.AddDate(0, 0, upcomingRenewalsDays), dashboardListSize)
}
