// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//
// The only task today is flavor:changed, an audit record of every write.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/flavors/internal/config"
	"github.com/hibiken/asynq"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Queue names and their worker share.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server *asynq.Server
	logger *zerolog.Logger

	// nrApp receives a custom event per processed task. Nil when New
	// Relic is off.
	nrApp *newrelic.Application
}

// NewJobService creates a JobService configured to use Redis from cfg.
// Callers check cfg.Redis.Enabled first; there is no job service
// without Redis.
func NewJobService(logger *zerolog.Logger, cfg *config.Config, nrApp *newrelic.Application) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
		nrApp:  nrApp,
	}
}

// Mux routes task types to their handlers.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskFlavorChanged, j.handleFlavorChangedTask)
	return mux
}

// Start registers the task handlers and starts the workers. It does not
// block; workers run until Stop.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return fmt.Errorf("starting job server: %w", err)
	}
	return nil
}

// Stop waits for in-flight tasks and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// PublishFlavorChanged enqueues a flavor:changed task.
func (j *JobService) PublishFlavorChanged(ctx context.Context, p FlavorChangedPayload) error {
	task, err := NewFlavorChangedTask(p)
	if err != nil {
		return fmt.Errorf("building %s task: %w", TaskFlavorChanged, err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueueing %s task: %w", TaskFlavorChanged, err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("action", string(p.Action)).
		Msg("enqueued flavor change")
	return nil
}
