// Package handler is the first layer after the router.
//
// It binds and validates requests through the validation package, calls
// the service layer, and writes the responses.
package handler

import (
	"github.com/deppfellow/flavors/internal/server"
	"github.com/deppfellow/flavors/internal/service"
	"github.com/deppfellow/flavors/static"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Flavor  *FlavorHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s, static.Files),
		Flavor:  NewFlavorHandler(s, services.Flavor),
	}
}
