package services

import (
	"context"
	"io"
	"time"

	"subdesk/internal/models"
	"subdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepository) List(ctx context.Context, search string, opts repositories.ListOptions) ([]*models.Customer, error) {
	args := m.Called(ctx, search, opts)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Category, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]*models.Category), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, categoryID *uuid.UUID, opts repositories.ListOptions) ([]*models.Product, error) {
	args := m.Called(ctx, categoryID, opts)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetDetail(ctx context.Context, id uuid.UUID) (*models.SubscriptionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubscriptionRepository) List(ctx context.Context, filter repositories.SubscriptionFilter, opts repositories.ListOptions) ([]*models.SubscriptionDetail, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionRepository) ListActive(ctx context.Context) ([]models.Subscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListExpiring(ctx context.Context, from, to time.Time, limit int) ([]*models.SubscriptionDetail, error) {
	args := m.Called(ctx, from, to, limit)
	return args.Get(0).([]*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionRepository) ListLapsed(ctx context.Context, before time.Time) ([]*models.SubscriptionDetail, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionRepository) ListRecent(ctx context.Context, limit int) ([]*models.SubscriptionDetail, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionRepository) CountByStatus(ctx context.Context, status models.SubscriptionStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionRepository) Renew(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	return m.Called(ctx, id, start, end).Error(0)
}

func (m *MockSubscriptionRepository) Expire(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockReminderRepository) GetDetail(ctx context.Context, id uuid.UUID) (*models.ReminderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReminderDetail), args.Error(1)
}

func (m *MockReminderRepository) List(ctx context.Context, filter repositories.ReminderFilter, opts repositories.ListOptions) ([]*models.ReminderDetail, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).([]*models.ReminderDetail), args.Error(1)
}

func (m *MockReminderRepository) ListBySubscriptions(ctx context.Context, ids []uuid.UUID) ([]models.Reminder, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Reminder), args.Error(1)
}

func (m *MockReminderRepository) ListDue(ctx context.Context, reference time.Time, limit int) ([]*models.ReminderDetail, error) {
	args := m.Called(ctx, reference, limit)
	return args.Get(0).([]*models.ReminderDetail), args.Error(1)
}

func (m *MockReminderRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockReminderRepository) Insert(ctx context.Context, reminder *models.Reminder) error {
	return m.Called(ctx, reminder).Error(0)
}

func (m *MockReminderRepository) InsertIfAbsent(ctx context.Context, draft models.ReminderDraft) (*models.Reminder, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	return m.Called(ctx, reminder).Error(0)
}

func (m *MockReminderRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return m.Called(ctx, id, sentAt).Error(0)
}

func (m *MockReminderRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockReminderSettingsRepository struct {
	mock.Mock
}

func (m *MockReminderSettingsRepository) GetBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.ReminderSettings, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReminderSettings), args.Error(1)
}

func (m *MockReminderSettingsRepository) ListBySubscriptions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.ReminderSettings, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*models.ReminderSettings), args.Error(1)
}

func (m *MockReminderSettingsRepository) Upsert(ctx context.Context, settings *models.ReminderSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *MockReminderSettingsRepository) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	return m.Called(ctx, subscriptionID).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return m.Called(ctx, product, ttl).Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockCacheService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockCacheService) SetDashboardStats(ctx context.Context, stats *models.DashboardStats, ttl time.Duration) error {
	return m.Called(ctx, stats, ttl).Error(0)
}

func (m *MockCacheService) InvalidateDashboard(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	args := m.Called(ctx, key, limit)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	return m.Called(ctx, key, window).Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) Upload(ctx context.Context, bucket, object, contentType string, reader io.Reader, size int64) error {
	return m.Called(ctx, bucket, object, contentType, reader, size).Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucket, object, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucket string) error {
	return m.Called(ctx, bucket).Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, reminder *models.ReminderDetail, customMessage string) error {
	return m.Called(ctx, reminder, customMessage).Error(0)
}
