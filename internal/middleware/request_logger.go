package middleware

import (
	"net/http"
	"strings"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/logging"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// skipPrefixes are read paths that are not logged unless they fail.
var skipPrefixes = []string{"/health", "/metrics", "/favicon"}

// RequestLogger assigns a request id and logs each request through zerolog.
// Mutations log at info, reads at debug, failures at warn or error.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			ctx, requestID := logging.WithRequestID(req.Context(), req.Header.Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			status := c.Response().Status
			quiet := req.Method == http.MethodGet || req.Method == http.MethodHead
			if quiet && status < http.StatusBadRequest && shouldSkipLogging(c.Path()) {
				return nil
			}

			var event *zerolog.Event
			logger := logging.FromContext(ctx)
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error().Err(err)
			case status >= http.StatusBadRequest:
				event = logger.Warn()
			case quiet:
				event = logger.Debug()
			default:
				event = logger.Info()
			}

			event.
				Str("method", req.Method).
				Str("path", c.Path()).
				Str("uri", req.RequestURI).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("ip", c.RealIP())
			if email, ok := common.GetAdminEmailFromContext(c.Request().Context()); ok {
				event.Str("admin", email)
			}
			event.Msg("http request")
			return nil
		}
	}
}

func shouldSkipLogging(path string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
