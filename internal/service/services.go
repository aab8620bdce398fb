// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/flavors/internal/repository"
	"github.com/deppfellow/flavors/internal/server"
)

type Services struct {
	Flavor *FlavorService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	var events EventPublisher
	if s.Job != nil {
		events = s.Job
	}

	return &Services{
		Flavor: NewFlavorService(repos.Flavor, events, s.Logger),
	}
}
