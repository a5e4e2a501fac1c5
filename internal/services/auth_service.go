package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"subdesk/internal/caching"
	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

const (
	tokenIssuer       = "subdesk-auth"
	tokenAudience     = "subdesk-api"
	maxLoginAttempts  = 5
	loginAttemptsSpan = 15 * time.Minute
	minPasswordLength = 8
)

// AuthService handles admin login and JWT token management
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	CreateUser(ctx context.Context, email, name, password string) (*models.User, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	cacheSvc  caching.CacheService
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		cacheSvc:  cacheSvc,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	attemptsKey := "login:" + email

	if limited, err := s.cacheSvc.IsRateLimited(ctx, attemptsKey, maxLoginAttempts); err != nil {
		log.Warn().Err(err).Msg("login rate limit check failed")
	} else if limited {
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if err := s.cacheSvc.IncrementRateLimit(ctx, attemptsKey, loginAttemptsSpan); err != nil {
			log.Warn().Err(err).Msg("failed to record login attempt")
		}
		return nil, ErrInvalidCredentials
	}

	return s.generateToken(user)
}

func (s *authService) generateToken(user *models.User) (*models.TokenResponse, error) {
	now := s.now()
	claims := TokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		UserID:      user.ID.String(),
		IssuedAt:    now,
	}, nil
}

// ValidateToken validates JWT access token
func (s *authService) ValidateToken(_ context.Context, token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if claims, ok := parsed.Claims.(*TokenClaims); ok && parsed.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}

func (s *authService) CreateUser(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	verr := &common.ValidationError{}
	if !emailPattern.MatchString(email) {
		verr.Add("email", "Email is invalid")
	}
	if len(password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
