package handlers

import (
	"net/http"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
)

type DashboardHandlers struct {
	dashboardService services.DashboardService
}

func NewDashboardHandlers(dashboardService services.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService}
}

// Stats handles GET /dashboard/stats
func (h *DashboardHandlers) Stats(c echo.Context) error {
	stats, err := h.dashboardService.Stats(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RecentActivity handles GET /dashboard/recent
func (h *DashboardHandlers) RecentActivity(c echo.Context) error {
	recent, err := h.dashboardService.RecentActivity(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"subscriptions": orEmpty(recent)})
}

// UpcomingRenewals handles GET /dashboard/upcoming
func (h *DashboardHandlers) UpcomingRenewals(c echo.Context) error {
	upcoming, err := h.dashboardService.UpcomingRenewals(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"subscriptions": orEmpty(upcoming)})
}

func orEmpty(subs []*models.SubscriptionDetail) []*models.SubscriptionDetail {
	if subs == nil {
		return []*models.SubscriptionDetail{}
	}
	return subs
}
