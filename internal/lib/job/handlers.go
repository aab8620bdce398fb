package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// handleFlavorChangedTask writes the audit line for one write. A payload
// that does not decode is skipped rather than retried.
func (j *JobService) handleFlavorChangedTask(ctx context.Context, t *asynq.Task) error {
	var p FlavorChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal flavor changed payload: %v: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", TaskFlavorChanged).
		Str("action", string(p.Action)).
		Str("flavor_id", p.FlavorID).
		Str("name", p.Name).
		Msg("flavor changed")

	if j.nrApp != nil {
		j.nrApp.RecordCustomEvent("FlavorChanged", map[string]interface{}{
			"action":    string(p.Action),
			"flavor_id": p.FlavorID,
			"name":      p.Name,
		})
	}

	return nil
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{log: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
