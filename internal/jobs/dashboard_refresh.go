package jobs

import (
	"context"
	"time"

	"subdesk/internal/caching"
	"subdesk/internal/metrics"
	"subdesk/internal/services"

	"github.com/rs/zerolog/log"
)

// DashboardRefreshService keeps the cached dashboard counters warm.
type DashboardRefreshService struct {
	dashboardSvc services.DashboardService
	cacheSvc     caching.CacheService
}

func NewDashboardRefreshService(dashboardSvc services.DashboardService, cacheSvc caching.CacheService) *DashboardRefreshService {
	return &DashboardRefreshService{dashboardSvc: dashboardSvc, cacheSvc: cacheSvc}
}

// Refresh drops the cached stats and recomputes them.
func (d *DashboardRefreshService) Refresh(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveJob("dashboard-refresh", start, err) }()

	if err := d.cacheSvc.InvalidateDashboard(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
	stats, err := d.dashboardSvc.Stats(ctx)
	if err != nil {
		return err
	}
	log.Debug().
		Int("customers", stats.TotalCustomers).
		Int("active_subscriptions", stats.ActiveSubscriptions).
		Int("pending_reminders", stats.PendingReminders).
		Msg("dashboard stats refreshed")
	return nil
}
