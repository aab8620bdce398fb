package handler

import (
	"net/http"

	"github.com/deppfellow/flavors/internal/model"
	"github.com/deppfellow/flavors/internal/server"
	"github.com/deppfellow/flavors/internal/service"
	"github.com/labstack/echo/v4"
)

// FlavorHandler serves /api/flavors.
type FlavorHandler struct {
	Handler
	flavors *service.FlavorService
}

func NewFlavorHandler(s *server.Server, flavors *service.FlavorService) *FlavorHandler {
	return &FlavorHandler{
		Handler: NewHandler(s),
		flavors: flavors,
	}
}

func (h *FlavorHandler) requireFields() bool {
	return h.server.Config.Validation.RequireFields()
}

// ListFlavors answers GET /api/flavors with every row, [] when empty.
func (h *FlavorHandler) ListFlavors() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, _ *model.ListFlavorsPayload) ([]model.Flavor, error) {
			return h.flavors.ListFlavors(c.Request().Context())
		},
		http.StatusOK,
		func() *model.ListFlavorsPayload { return &model.ListFlavorsPayload{} },
	)
}

// GetFlavor answers GET /api/flavors/:id, or a plain-text 404.
func (h *FlavorHandler) GetFlavor() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *model.GetFlavorPayload) (*model.Flavor, error) {
			return h.flavors.GetFlavor(c.Request().Context(), req.ID)
		},
		http.StatusOK,
		func() *model.GetFlavorPayload { return &model.GetFlavorPayload{} },
	)
}

// CreateFlavor answers POST /api/flavors with 201 and the stored row.
func (h *FlavorHandler) CreateFlavor() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *model.CreateFlavorPayload) (*model.Flavor, error) {
			return h.flavors.CreateFlavor(c.Request().Context(), req.FlavorFields)
		},
		http.StatusCreated,
		func() *model.CreateFlavorPayload {
			return &model.CreateFlavorPayload{RequireFields: h.requireFields()}
		},
	)
}

// UpdateFlavor answers PUT /api/flavors/:id with the updated row, or a
// plain-text 404.
func (h *FlavorHandler) UpdateFlavor() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *model.UpdateFlavorPayload) (*model.Flavor, error) {
			return h.flavors.UpdateFlavor(c.Request().Context(), req.ID, req.FlavorFields)
		},
		http.StatusOK,
		func() *model.UpdateFlavorPayload {
			return &model.UpdateFlavorPayload{RequireFields: h.requireFields()}
		},
	)
}

// DeleteFlavor answers DELETE /api/flavors/:id with 204, existing row or not.
func (h *FlavorHandler) DeleteFlavor() echo.HandlerFunc {
	return HandleNoContent(h.Handler,
		func(c echo.Context, req *model.DeleteFlavorPayload) error {
			return h.flavors.DeleteFlavor(c.Request().Context(), req.ID)
		},
		http.StatusNoContent,
		func() *model.DeleteFlavorPayload { return &model.DeleteFlavorPayload{} },
	)
}
