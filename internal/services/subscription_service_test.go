package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceTestSuite struct {
	suite.Suite
	mockSubscriptionRepo *MockSubscriptionRepository
	mockCustomerRepo     *MockCustomerRepository
	mockProductRepo      *MockProductRepository
	mockCache            *MockCacheService
	service              *subscriptionService
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	suite.mockSubscriptionRepo = &MockSubscriptionRepository{}
	suite.mockCustomerRepo = &MockCustomerRepository{}
	suite.mockProductRepo = &MockProductRepository{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewSubscriptionService(
		suite.mockSubscriptionRepo,
		suite.mockCustomerRepo,
		suite.mockProductRepo,
		suite.mockCache,
	).(*subscriptionService)
	suite.service.now = func() time.Time { return time.Date(2025, 2, 10, 18, 0, 0, 0, time.UTC) }
}

func (suite *SubscriptionServiceTestSuite) TearDownTest() {
	suite.mockSubscriptionRepo.AssertExpectations(suite.T())
	suite.mockCustomerRepo.AssertExpectations(suite.T())
	suite.mockProductRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}

func (suite *SubscriptionServiceTestSuite) expectReferences(customerID, productID uuid.UUID, cycle models.BillingCycle) {
	suite.mockCustomerRepo.On("GetByID", mock.Anything, customerID).Return(&models.Customer{ID: customerID}, nil).Once()
	suite.mockProductRepo.On("GetByID", mock.Anything, productID).Return(&models.Product{ID: productID, BillingCycle: cycle}, nil).Once()
}

func (suite *SubscriptionServiceTestSuite) TestCreate_DerivesEndDate() {
	tests := []struct {
		name  string
		cycle models.BillingCycle
		start time.Time
		end   time.Time
	}{
		{"monthly", models.BillingCycleMonthly, day(2025, 1, 15), day(2025, 2, 15)},
		{"monthly clamps to month end", models.BillingCycleMonthly, day(2025, 1, 31), day(2025, 2, 28)},
		{"quarterly", models.BillingCycleQuarterly, day(2025, 11, 30), day(2026, 2, 28)},
		{"yearly from leap day", models.BillingCycleYearly, day(2024, 2, 29), day(2025, 2, 28)},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			customerID, productID := uuid.New(), uuid.New()
			suite.expectReferences(customerID, productID, tt.cycle)
			suite.mockSubscriptionRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Subscription")).Return(nil).Once()
			suite.mockCache.On("InvalidateDashboard", mock.Anything).Return(nil).Once()

			sub, err := suite.service.Create(context.Background(), SubscriptionInput{
				CustomerID: customerID,
				ProductID:  productID,
				StartDate:  tt.start.Add(13 * time.Hour),
			})

			suite.Require().NoError(err)
			assert.Equal(suite.T(), tt.start, sub.StartDate)
			assert.Equal(suite.T(), tt.end, sub.EndDate)
			assert.Equal(suite.T(), models.SubscriptionStatusActive, sub.Status)
			assert.True(suite.T(), sub.AutoRenew)
			suite.TearDownTest()
		})
	}
}

func (suite *SubscriptionServiceTestSuite) TestCreate_MissingProduct() {
	customerID, productID := uuid.New(), uuid.New()
	suite.mockCustomerRepo.On("GetByID", mock.Anything, customerID).Return(&models.Customer{ID: customerID}, nil).Once()
	suite.mockProductRepo.On("GetByID", mock.Anything, productID).Return(nil, common.NotFound("product", productID)).Once()

	_, err := suite.service.Create(context.Background(), SubscriptionInput{CustomerID: customerID, ProductID: productID, StartDate: day(2025, 1, 1)})

	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Contains(suite.T(), err.Error(), "product_id")
}

func (suite *SubscriptionServiceTestSuite) TestCreate_RequiredFields() {
	_, err := suite.service.Create(context.Background(), SubscriptionInput{Status: "paused"})

	var verr *common.ValidationError
	suite.Require().True(errors.As(err, &verr))
	assert.Len(suite.T(), verr.Fields, 4)
}

func (suite *SubscriptionServiceTestSuite) TestUpdate_EndBeforeStart() {
	end := day(2025, 1, 1)
	_, err := suite.service.Update(context.Background(), uuid.New(), SubscriptionInput{
		CustomerID: uuid.New(),
		ProductID:  uuid.New(),
		StartDate:  day(2025, 1, 1),
		EndDate:    &end,
	})

	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Contains(suite.T(), err.Error(), "End date must be after start date")
}

func (suite *SubscriptionServiceTestSuite) TestUpdate_ManualEndDate() {
	id, customerID, productID := uuid.New(), uuid.New(), uuid.New()
	end := day(2025, 6, 30)
	autoRenew := false
	existing := &models.Subscription{ID: id, CustomerID: customerID, ProductID: productID, Status: models.SubscriptionStatusActive, AutoRenew: true}
	suite.mockSubscriptionRepo.On("GetByID", mock.Anything, id).Return(existing, nil).Once()
	suite.expectReferences(customerID, productID, models.BillingCycleMonthly)
	suite.mockSubscriptionRepo.On("Update", mock.Anything, existing).Return(nil).Once()
	suite.mockCache.On("InvalidateDashboard", mock.Anything).Return(nil).Once()

	sub, err := suite.service.Update(context.Background(), id, SubscriptionInput{
		CustomerID: customerID,
		ProductID:  productID,
		StartDate:  day(2025, 1, 1),
		EndDate:    &end,
		AutoRenew:  &autoRenew,
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), end, sub.EndDate)
	assert.False(suite.T(), sub.AutoRenew)
}

func (suite *SubscriptionServiceTestSuite) TestListExpiring() {
	suite.mockSubscriptionRepo.On("ListExpiring", mock.Anything, day(2025, 2, 10), day(2025, 2, 17), 0).
		Return([]*models.SubscriptionDetail{}, nil).Once()

	_, err := suite.service.ListExpiring(context.Background(), 7)

	assert.NoError(suite.T(), err)
}

func (suite *SubscriptionServiceTestSuite) TestListExpiring_NegativeDays() {
	_, err := suite.service.ListExpiring(context.Background(), -1)

	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *SubscriptionServiceTestSuite) TestProcessLapsed() {
	renewing := &models.SubscriptionDetail{
		Subscription: models.Subscription{ID: uuid.New(), StartDate: day(2024, 12, 31), EndDate: day(2025, 1, 31), AutoRenew: true, Status: models.SubscriptionStatusActive},
		Product:      models.Product{BillingCycle: models.BillingCycleMonthly},
	}
	expiring := &models.SubscriptionDetail{
		Subscription: models.Subscription{ID: uuid.New(), StartDate: day(2025, 1, 1), EndDate: day(2025, 2, 1), Status: models.SubscriptionStatusActive},
		Product:      models.Product{BillingCycle: models.BillingCycleMonthly},
	}
	broken := &models.SubscriptionDetail{
		Subscription: models.Subscription{ID: uuid.New(), StartDate: day(2025, 1, 5), EndDate: day(2025, 2, 5), Status: models.SubscriptionStatusActive},
		Product:      models.Product{BillingCycle: models.BillingCycleMonthly},
	}
	ref := day(2025, 2, 10)

	suite.mockSubscriptionRepo.On("ListLapsed", mock.Anything, ref).
		Return([]*models.SubscriptionDetail{renewing, expiring, broken}, nil).Once()
	suite.mockSubscriptionRepo.On("Renew", mock.Anything, renewing.ID, day(2025, 1, 31), day(2025, 2, 28)).Return(nil).Once()
	suite.mockSubscriptionRepo.On("Expire", mock.Anything, expiring.ID).Return(nil).Once()
	suite.mockSubscriptionRepo.On("Expire", mock.Anything, broken.ID).Return(common.NotFound("active subscription", broken.ID)).Once()
	suite.mockCache.On("InvalidateDashboard", mock.Anything).Return(nil).Once()

	result, err := suite.service.ProcessLapsed(context.Background(), ref)

	suite.Require().NoError(err)
	assert.Equal(suite.T(), &LapsedResult{Renewed: 1, Expired: 1, Failed: 1}, result)
}
