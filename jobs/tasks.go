package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPublishScheduled publishes revisions whose go-live time has passed.
	TaskPublishScheduled = "pages:publish_scheduled"
)

// PublishScheduledPayload carries scheduling metadata. A zero ScheduledFor
// means "now" at execution time.
type PublishScheduledPayload struct {
	ScheduledFor time.Time `json:"scheduled_for,omitempty"`
}

// NewPublishScheduledTask constructs an Asynq task for the scheduled publisher.
func NewPublishScheduledTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(PublishScheduledPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPublishScheduled, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewTask builds a task by type name for manual triggering.
func NewTask(name string) (*asynq.Task, error) {
	switch name {
	case TaskPublishScheduled:
		return NewPublishScheduledTask(time.Time{})
	default:
		return nil, fmt.Errorf("jobs: unknown task %q", name)
	}
}
