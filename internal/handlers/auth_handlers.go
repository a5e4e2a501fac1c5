package handlers

import (
	"errors"
	"net/http"
	"strings"

	"subdesk/internal/common"
	"subdesk/internal/models"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Login handles POST /auth/login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}

	verr := &common.ValidationError{}
	if strings.TrimSpace(req.Email) == "" {
		verr.Add("email", "Email is required")
	}
	if req.Password == "" {
		verr.Add("password", "Password is required")
	}
	if err := verr.OrNil(); err != nil {
		return common.SendError(c, err)
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", err.Error(), nil))
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many login attempts, try again later", nil))
	case err != nil:
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// Me handles GET /auth/me and echoes the authenticated admin
func (h *AuthHandlers) Me(c echo.Context) error {
	email, ok := common.GetAdminEmailFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"email":   email,
		"user_id": c.Get("admin_id"),
	})
}
