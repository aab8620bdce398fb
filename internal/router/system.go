package router

import (
	"github.com/deppfellow/flavors/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not part of the
// flavors API: health, docs UI and the static files the docs load.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", h.OpenAPI.Files())

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
