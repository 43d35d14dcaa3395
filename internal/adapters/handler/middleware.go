package handler

import (
	"time"

	"pixbox/internal/metrics"

	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RequestLogger attaches a request-scoped zerolog logger, assigns request
// IDs and feeds the request counters.
func RequestLogger(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			rid := req.Header.Get("X-Request-ID")
			if rid == "" {
				if id, err := uuid.NewV4(); err == nil {
					rid = id.String()
				}
				c.Response().Header().Set("X-Request-ID", rid)
			}

			logger := log.With().
				Str("requestId", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()

			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			err := next(c)

			status := c.Response().Status
			if reg != nil {
				reg.Inc(req.Context(), "http_requests_total", map[string]string{
					"method": req.Method,
					"path":   req.URL.Path,
				}, 1)
			}

			if err != nil || status >= 500 {
				logger.Error().Err(err).Int("status", status).Dur("duration", time.Since(start)).
					Msg("request failed")
			} else {
				logger.Info().Int("status", status).Dur("duration", time.Since(start)).
					Msg("request served")
			}

			return err
		}
	}
}
