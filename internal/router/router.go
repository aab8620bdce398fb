// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/flavors/internal/handler"
	"github.com/deppfellow/flavors/internal/middleware"
	"github.com/deppfellow/flavors/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with the global middleware chain and
// every route.
//
// Order matters: the New Relic transaction must exist before the request
// id and context logger pick up its trace ids, and Recover sits last so a
// panic is still logged with the request's fields.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	router.Use(
		mw.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.CORS(),
		mw.Global.Secure(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
	)

	if mw.RateLimit.Enabled() {
		router.Use(mw.RateLimit.Limit())
	}

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	registerFlavorRoutes(api, h)

	return router
}
