package middleware

import (
	"context"
	"net/http"
	"strings"

	"subdesk/internal/common"
	"subdesk/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TokenValidator verifies admin access tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*services.TokenClaims, error)
}

// JWTMiddleware handles JWT token validation
func JWTMiddleware(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims, err := validator.ValidateToken(c.Request().Context(), tokenString)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("rejected access token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), common.AdminEmailKey, claims.Email)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("admin_id", claims.Subject)

			return next(c)
		}
	}
}
