package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"subdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dashboardMocks struct {
	customers     *MockCustomerRepository
	products      *MockProductRepository
	subscriptions *MockSubscriptionRepository
	reminders     *MockReminderRepository
	cache         *MockCacheService
}

func newTestDashboardService(t *testing.T) (*dashboardService, dashboardMocks) {
	t.Helper()
	m := dashboardMocks{
		customers:     &MockCustomerRepository{},
		products:      &MockProductRepository{},
		subscriptions: &MockSubscriptionRepository{},
		reminders:     &MockReminderRepository{},
		cache:         &MockCacheService{},
	}
	svc := NewDashboardService(m.customers, m.products, m.subscriptions, m.reminders, m.cache).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		m.customers.AssertExpectations(t)
		m.products.AssertExpectations(t)
		m.subscriptions.AssertExpectations(t)
		m.reminders.AssertExpectations(t)
		m.cache.AssertExpectations(t)
	})
	return svc, m
}

func TestDashboardService_StatsCacheHit(t *testing.T) {
	svc, m := newTestDashboardService(t)
	cached := &models.DashboardStats{TotalCustomers: 4}
	m.cache.On("GetDashboardStats", mock.Anything).Return(cached, nil).Once()

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Same(t, cached, stats)
}

func TestDashboardService_StatsCacheMiss(t *testing.T) {
	svc, m := newTestDashboardService(t)
	m.cache.On("GetDashboardStats", mock.Anything).Return(nil, errors.New("redis down")).Once()
	m.customers.On("Count", mock.Anything).Return(12, nil).Once()
	m.subscriptions.On("CountByStatus", mock.Anything, models.SubscriptionStatusActive).Return(9, nil).Once()
	m.products.On("Count", mock.Anything).Return(3, nil).Once()
	m.reminders.On("CountPending", mock.Anything).Return(5, nil).Once()
	want := &models.DashboardStats{TotalCustomers: 12, ActiveSubscriptions: 9, TotalProducts: 3, PendingReminders: 5}
	m.cache.On("SetDashboardStats", mock.Anything, want, dashboardStatsTTL).Return(nil).Once()

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, stats)
}

func TestDashboardService_UpcomingRenewals(t *testing.T) {
	svc, m := newTestDashboardService(t)
	m.subscriptions.On("ListExpiring", mock.Anything, day(2025, 2, 10), day(2025, 2, 17), dashboardListSize).
		Return([]*models.SubscriptionDetail{{}}, nil).Once()

	out, err := svc.UpcomingRenewals(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
