package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/flavors/internal/middleware"
	"github.com/deppfellow/flavors/internal/server"
	"github.com/labstack/echo/v4"
)

// healthCheck is one dependency probe. Only a failing required check makes
// the service unhealthy; Redis only carries change events, so it is
// reported but not required.
type healthCheck struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
	checks []healthCheck
}

// NewHealthHandler registers the checks enabled in
// observability.health_checks.
func NewHealthHandler(s *server.Server) *HealthHandler {
	var checks []healthCheck

	if s.Config.Observability.HealthCheckEnabled("database") && s.DB != nil {
		checks = append(checks, healthCheck{name: "database", required: true, ping: s.DB.Ping})
	}

	if s.Config.Observability.HealthCheckEnabled("redis") && s.Redis != nil {
		checks = append(checks, healthCheck{name: "redis", ping: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}

	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
	}
}

// CheckHealth runs every check and answers 200, or 503 when a required
// check fails.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{}, len(h.checks))
	healthy := true

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.server.Config.Observability.HealthChecks.Timeout)
		checkStart := time.Now()
		err := check.ping(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err == nil {
			checks[check.name] = map[string]interface{}{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}
			continue
		}

		checks[check.name] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}
		if check.required {
			healthy = false
		}

		logger.Error().
			Err(err).
			Str("check", check.name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordFailure(check.name, err, elapsed)
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !healthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(check string, err error, elapsed time.Duration) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
