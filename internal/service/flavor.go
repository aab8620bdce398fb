package service

import (
	"context"
	"strconv"

	"github.com/deppfellow/flavors/internal/lib/job"
	"github.com/deppfellow/flavors/internal/model"
	"github.com/deppfellow/flavors/internal/sqlerr"
	"github.com/rs/zerolog"
)

// FlavorStore is what FlavorService needs from storage.
type FlavorStore interface {
	List(ctx context.Context) ([]model.Flavor, error)
	GetByID(ctx context.Context, id string) (*model.Flavor, error)
	Create(ctx context.Context, fields model.FlavorFields) (*model.Flavor, error)
	Update(ctx context.Context, id string, fields model.FlavorFields) (*model.Flavor, error)
	Delete(ctx context.Context, id string) error
}

// EventPublisher receives a change event after every successful write.
type EventPublisher interface {
	PublishFlavorChanged(ctx context.Context, p job.FlavorChangedPayload) error
}

// FlavorService turns store results into HTTP-ready errors and emits
// change events. Events are optional: with a nil publisher nothing is
// sent.
type FlavorService struct {
	store  FlavorStore
	events EventPublisher
	logger *zerolog.Logger
}

func NewFlavorService(store FlavorStore, events EventPublisher, logger *zerolog.Logger) *FlavorService {
	return &FlavorService{
		store:  store,
		events: events,
		logger: logger,
	}
}

func (s *FlavorService) ListFlavors(ctx context.Context) ([]model.Flavor, error) {
	flavors, err := s.store.List(ctx)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return flavors, nil
}

func (s *FlavorService) GetFlavor(ctx context.Context, id string) (*model.Flavor, error) {
	flavor, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return flavor, nil
}

func (s *FlavorService) CreateFlavor(ctx context.Context, fields model.FlavorFields) (*model.Flavor, error) {
	flavor, err := s.store.Create(ctx, fields)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.publish(ctx, job.ActionCreated, strconv.FormatInt(flavor.ID, 10), flavor.Name)
	return flavor, nil
}

func (s *FlavorService) UpdateFlavor(ctx context.Context, id string, fields model.FlavorFields) (*model.Flavor, error) {
	flavor, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.publish(ctx, job.ActionUpdated, strconv.FormatInt(flavor.ID, 10), flavor.Name)
	return flavor, nil
}

// DeleteFlavor succeeds whether or not the row existed.
func (s *FlavorService) DeleteFlavor(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return sqlerr.HandleError(err)
	}

	s.publish(ctx, job.ActionDeleted, id, "")
	return nil
}

// publish never fails the request; a lost event is only logged.
func (s *FlavorService) publish(ctx context.Context, action job.Action, id, name string) {
	if s.events == nil {
		return
	}

	err := s.events.PublishFlavorChanged(ctx, job.FlavorChangedPayload{
		Action:   action,
		FlavorID: id,
		Name:     name,
	})
	if err != nil {
		logger := zerolog.Ctx(ctx)
		if logger.GetLevel() == zerolog.Disabled {
			logger = s.logger
		}
		logger.Warn().
			Err(err).
			Str("action", string(action)).
			Str("flavor_id", id).
			Msg("failed to publish flavor change")
	}
}
