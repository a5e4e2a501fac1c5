package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	AdminEmailKey contextKey = "admin_email"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendError renders err with the status code of its kind.
func SendError(c echo.Context, err error) error {
	kind := KindOf(err)
	switch kind {
	case "VALIDATION_ERROR":
		var verr *ValidationError
		details := map[string]string{}
		if errors.As(err, &verr) {
			details = verr.Fields
		}
		return c.JSON(http.StatusBadRequest, CreateErrorResponse(kind, "Validation failed", details))
	case "NOT_FOUND":
		return c.JSON(http.StatusNotFound, CreateErrorResponse(kind, err.Error(), nil))
	case "INVALID_TRANSITION":
		return c.JSON(http.StatusConflict, CreateErrorResponse(kind, err.Error(), nil))
	case "DEPENDENCY_FAILURE":
		log.Error().Err(err).Str("path", c.Path()).Msg("dependency failure")
		return c.JSON(http.StatusServiceUnavailable, CreateErrorResponse(kind, "A backing service is unavailable, please retry", nil))
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse(kind, "Internal server error", nil))
	}
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	return SendError(c, NewValidationError(field, message))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// ValidateUUID parses a path or body identifier.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("%s must be a valid UUID", fieldName))
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(dateStr, fieldName string) (time.Time, error) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, NewValidationError(fieldName, fmt.Sprintf("%s must be in YYYY-MM-DD format", fieldName))
	}
	return date, nil
}

// ValidatePaginationParams clamps pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ValidateSortOrder validates sort order parameters
func ValidateSortOrder(sortOrder string) string {
	if strings.ToLower(sortOrder) == "asc" {
		return "ASC"
	}
	return "DESC"
}

// GetAdminEmailFromContext extracts the authenticated admin from request context
func GetAdminEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AdminEmailKey).(string)
	return email, ok
}
