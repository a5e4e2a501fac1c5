package handlers

import (
	"context"
	"time"

	"subdesk/internal/models"
	"subdesk/internal/repositories"
	"subdesk/internal/services"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct{ mock.Mock }

func (m *MockCustomerService) Create(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerService) List(ctx context.Context, search string, opts repositories.ListOptions) ([]*models.Customer, error) {
	args := m.Called(ctx, search, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

type MockProductService struct{ mock.Mock }

func (m *MockProductService) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) List(ctx context.Context, categoryID *uuid.UUID, opts repositories.ListOptions) ([]*models.Product, error) {
	args := m.Called(ctx, categoryID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

type MockSubscriptionService struct{ mock.Mock }

func (m *MockSubscriptionService) Create(ctx context.Context, in services.SubscriptionInput) (*models.Subscription, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionService) Update(ctx context.Context, id uuid.UUID, in services.SubscriptionInput) (*models.Subscription, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubscriptionService) List(ctx context.Context, filter repositories.SubscriptionFilter, opts repositories.ListOptions) ([]*models.SubscriptionDetail, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionService) ListExpiring(ctx context.Context, days int) ([]*models.SubscriptionDetail, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionDetail), args.Error(1)
}

func (m *MockSubscriptionService) ProcessLapsed(ctx context.Context, reference time.Time) (*services.LapsedResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LapsedResult), args.Error(1)
}

type MockReminderService struct{ mock.Mock }

func (m *MockReminderService) Generate(ctx context.Context, reference time.Time) (*services.GenerateResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GenerateResult), args.Error(1)
}

func (m *MockReminderService) ListPending(ctx context.Context, reference time.Time) ([]*models.ReminderDetail, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReminderDetail), args.Error(1)
}

func (m *MockReminderService) MarkSent(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockReminderService) MarkFailed(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockReminderService) Deliver(ctx context.Context, id uuid.UUID, final bool) error {
	return m.Called(ctx, id, final).Error(0)
}

func (m *MockReminderService) Create(ctx context.Context, reminder *models.Reminder) error {
	return m.Called(ctx, reminder).Error(0)
}

func (m *MockReminderService) GetByID(ctx context.Context, id uuid.UUID) (*models.ReminderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReminderDetail), args.Error(1)
}

func (m *MockReminderService) Update(ctx context.Context, reminder *models.Reminder) error {
	return m.Called(ctx, reminder).Error(0)
}

func (m *MockReminderService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReminderService) List(ctx context.Context, filter repositories.ReminderFilter, opts repositories.ListOptions) ([]*models.ReminderDetail, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReminderDetail), args.Error(1)
}

func (m *MockReminderService) GetSettings(ctx context.Context, subscriptionID uuid.UUID) (*models.ReminderSettings, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReminderSettings), args.Error(1)
}

func (m *MockReminderService) SaveSettings(ctx context.Context, settings *models.ReminderSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *MockReminderService) DeleteSettings(ctx context.Context, subscriptionID uuid.UUID) error {
	return m.Called(ctx, subscriptionID).Error(0)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*services.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, email, name, password string) (*models.User, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockExportService struct{ mock.Mock }

func (m *MockExportService) ExportSubscriptions(ctx context.Context, filter repositories.SubscriptionFilter) (*services.ExportResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportResult), args.Error(1)
}

type MockEnqueuer struct{ mock.Mock }

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
