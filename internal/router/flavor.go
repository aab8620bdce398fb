package router

import (
	"github.com/deppfellow/flavors/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerFlavorRoutes(api *echo.Group, h *handler.Handlers) {
	flavors := api.Group("/flavors")

	flavors.GET("", h.Flavor.ListFlavors())
	flavors.POST("", h.Flavor.CreateFlavor())
	flavors.GET("/:id", h.Flavor.GetFlavor())
	flavors.PUT("/:id", h.Flavor.UpdateFlavor())
	flavors.DELETE("/:id", h.Flavor.DeleteFlavor())
}
