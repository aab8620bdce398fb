package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskFlavorChanged is the job type name stored in Redis.
	TaskFlavorChanged = "flavor:changed"
)

// Action names the write that produced a change event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// FlavorChangedPayload is the JSON payload of a flavor:changed task.
//
// FlavorID is the id as the client sent it for deletes, so it is kept as a
// string. Name is empty for deletes.
type FlavorChangedPayload struct {
	Action   Action `json:"action"`
	FlavorID string `json:"flavor_id"`
	Name     string `json:"name,omitempty"`
}

// NewFlavorChangedTask serializes p into a task on the low queue.
func NewFlavorChangedTask(p FlavorChangedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskFlavorChanged,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	), nil
}
