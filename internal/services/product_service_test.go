package services

import (
	"context"
	"errors"
	"testing"

	"subdesk/internal/common"
	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// ProductServiceTestSuite defines the test suite
type ProductServiceTestSuite struct {
	suite.Suite
	mockProductRepo  *MockProductRepository
	mockCategoryRepo *MockCategoryRepository
	mockCache        *MockCacheService
	service          ProductService
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.mockProductRepo = &MockProductRepository{}
	suite.mockCategoryRepo = &MockCategoryRepository{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewProductService(suite.mockProductRepo, suite.mockCategoryRepo, suite.mockCache)
}

func (suite *ProductServiceTestSuite) TearDownTest() {
	suite.mockProductRepo.AssertExpectations(suite.T())
	suite.mockCategoryRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

func (suite *ProductServiceTestSuite) TestCreate_ProductSuccess() {
	product := &models.Product{
		Name:         "  Pro Plan ",
		Price:        decimal.RequireFromString("19.90"),
		BillingCycle: "Monthly",
	}
	suite.mockProductRepo.On("Create", mock.Anything, product).Return(nil).Once()
	suite.mockCache.On("InvalidateDashboard", mock.Anything).Return(nil).Once()

	err := suite.service.Create(context.Background(), product)

	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, product.ID)
	assert.Equal(suite.T(), "Pro Plan", product.Name)
	assert.Equal(suite.T(), models.BillingCycleMonthly, product.BillingCycle)
}

func (suite *ProductServiceTestSuite) TestCreate_ProductValidation() {
	product := &models.Product{
		Price:        decimal.Zero,
		BillingCycle: "weekly",
	}

	err := suite.service.Create(context.Background(), product)

	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	var verr *common.ValidationError
	suite.Require().True(errors.As(err, &verr))
	assert.Contains(suite.T(), verr.Fields, "name")
	assert.Contains(suite.T(), verr.Fields, "price")
	assert.Contains(suite.T(), verr.Fields, "billing_cycle")
}

func (suite *ProductServiceTestSuite) TestCreate_ProductWithMissingCategory() {
	categoryID := uuid.New()
	product := &models.Product{
		Name:         "Pro Plan",
		Price:        decimal.NewFromInt(10),
		BillingCycle: models.BillingCycleYearly,
		CategoryID:   &categoryID,
	}
	suite.mockCategoryRepo.On("GetByID", mock.Anything, categoryID).
		Return(nil, common.NotFound("category", categoryID)).Once()

	err := suite.service.Create(context.Background(), product)

	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Contains(suite.T(), err.Error(), "Category does not exist")
}

func (suite *ProductServiceTestSuite) TestGetByID_CacheHit() {
	id := uuid.New()
	cached := &models.Product{ID: id, Name: "Cached"}
	suite.mockCache.On("GetProduct", mock.Anything, id).Return(cached, nil).Once()

	product, err := suite.service.GetByID(context.Background(), id)

	assert.NoError(suite.T(), err)
	assert.Same(suite.T(), cached, product)
}

func (suite *ProductServiceTestSuite) TestGetByID_CacheFailureFallsBackToStore() {
	id := uuid.New()
	stored := &models.Product{ID: id, Name: "Stored"}
	suite.mockCache.On("GetProduct", mock.Anything, id).Return(nil, errors.New("redis down")).Once()
	suite.mockProductRepo.On("GetByID", mock.Anything, id).Return(stored, nil).Once()
	suite.mockCache.On("SetProduct", mock.Anything, stored, productCacheTTL).Return(errors.New("redis down")).Once()

	product, err := suite.service.GetByID(context.Background(), id)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Stored", product.Name)
}

func (suite *ProductServiceTestSuite) TestDelete_EvictsCache() {
	id := uuid.New()
	suite.mockProductRepo.On("Delete", mock.Anything, id).Return(nil).Once()
	suite.mockCache.On("DeleteProduct", mock.Anything, id).Return(nil).Once()
	suite.mockCache.On("InvalidateDashboard", mock.Anything).Return(nil).Once()

	assert.NoError(suite.T(), suite.service.Delete(context.Background(), id))
}

func (suite *ProductServiceTestSuite) TestDelete_StillReferenced() {
	id := uuid.New()
	suite.mockProductRepo.On("Delete", mock.Anything, id).
		Return(common.NewValidationError("id", "product is still in use")).Once()

	err := suite.service.Delete(context.Background(), id)

	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}
