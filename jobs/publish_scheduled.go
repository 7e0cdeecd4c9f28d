package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/arbor-cms/arbor/internal/jobs"
)

// Publisher makes due revisions live.
type Publisher interface {
	PublishDue(ctx context.Context, now time.Time) (int, error)
}

// PublishScheduledJob runs the scheduled publisher.
type PublishScheduledJob struct {
	Publisher Publisher
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewPublishScheduledJob constructs the job handler.
func NewPublishScheduledJob(publisher Publisher, logger *slog.Logger, metrics *jobmetrics.Metrics) *PublishScheduledJob {
	return &PublishScheduledJob{
		Publisher: publisher,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scheduled publisher.
func (j *PublishScheduledJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Publisher == nil {
		return errors.New("publish scheduled: dependencies not configured")
	}
	var payload PublishScheduledPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	now := j.now()
	if !payload.ScheduledFor.IsZero() && payload.ScheduledFor.Before(now) {
		now = payload.ScheduledFor.UTC()
	}

	tracker := j.Metrics.Track(TaskPublishScheduled)
	published, err := j.Publisher.PublishDue(ctx, now)
	if err != nil {
		j.log().Error("publish scheduled", slog.Time("now", now), slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.AddPublished(published)
	if published > 0 {
		j.log().Info("scheduled revisions published", slog.Int("count", published))
	}
	return tracker.End(nil)
}

func (j *PublishScheduledJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *PublishScheduledJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
