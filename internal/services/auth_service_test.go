package services

import (
	"context"
	"testing"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-with-enough-entropy"

func newTestAuthService(t *testing.T) (*authService, *MockUserRepository, *MockCacheService) {
	t.Helper()
	userRepo := &MockUserRepository{}
	cache := &MockCacheService{}
	svc := NewAuthService(userRepo, cache, testJWTSecret, time.Hour).(*authService)
	t.Cleanup(func() {
		userRepo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
	return svc, userRepo, cache
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: uuid.New(), Email: "admin@example.com", Name: "Admin", PasswordHash: string(hash)}
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	svc, userRepo, cache := newTestAuthService(t)
	user := testUser(t, "correct horse")

	cache.On("IsRateLimited", mock.Anything, "login:admin@example.com", maxLoginAttempts).Return(false, nil).Once()
	userRepo.On("GetByEmail", mock.Anything, "admin@example.com").Return(user, nil).Once()

	token, err := svc.Login(context.Background(), "  Admin@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, 3600, token.ExpiresIn)
	assert.Equal(t, user.ID.String(), token.UserID)

	claims, err := svc.ValidateToken(context.Background(), token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, userRepo, cache := newTestAuthService(t)
	user := testUser(t, "correct horse")

	cache.On("IsRateLimited", mock.Anything, "login:admin@example.com", maxLoginAttempts).Return(false, nil).Once()
	userRepo.On("GetByEmail", mock.Anything, "admin@example.com").Return(user, nil).Once()
	cache.On("IncrementRateLimit", mock.Anything, "login:admin@example.com", loginAttemptsSpan).Return(nil).Once()

	_, err := svc.Login(context.Background(), "admin@example.com", "battery staple")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc, userRepo, cache := newTestAuthService(t)

	cache.On("IsRateLimited", mock.Anything, "login:nobody@example.com", maxLoginAttempts).Return(false, nil).Once()
	userRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, common.NotFound("user", "nobody@example.com")).Once()
	cache.On("IncrementRateLimit", mock.Anything, "login:nobody@example.com", loginAttemptsSpan).Return(nil).Once()

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginRateLimited(t *testing.T) {
	svc, _, cache := newTestAuthService(t)

	cache.On("IsRateLimited", mock.Anything, "login:admin@example.com", maxLoginAttempts).Return(true, nil).Once()

	_, err := svc.Login(context.Background(), "admin@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestAuthService_ValidateExpiredToken(t *testing.T) {
	svc, userRepo, cache := newTestAuthService(t)
	user := testUser(t, "correct horse")
	issued := time.Date(2025, 2, 8, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	cache.On("IsRateLimited", mock.Anything, mock.Anything, maxLoginAttempts).Return(false, nil).Once()
	userRepo.On("GetByEmail", mock.Anything, "admin@example.com").Return(user, nil).Once()
	token, err := svc.Login(context.Background(), "admin@example.com", "correct horse")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), token.AccessToken)
	assert.Error(t, err)
}

func TestAuthService_ValidateRejectsForeignSecret(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	other := NewAuthService(&MockUserRepository{}, &MockCacheService{}, "another-secret", time.Hour).(*authService)
	token, err := other.generateToken(&models.User{ID: uuid.New(), Email: "x@example.com"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token.AccessToken)
	assert.Error(t, err)
}

func TestAuthService_CreateUser(t *testing.T) {
	svc, userRepo, _ := newTestAuthService(t)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := svc.CreateUser(context.Background(), "Ops@Example.com", " Ops ", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", user.Email)
	assert.Equal(t, "Ops", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long-enough")))

	_, err = svc.CreateUser(context.Background(), "bad", "", "short")
	assert.ErrorIs(t, err, common.ErrValidation)
}
