package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/arbor-cms/arbor/internal/jobs"
)

type stubPublisher struct {
	calls []time.Time
	count int
	err   error
}

func (s *stubPublisher) PublishDue(ctx context.Context, now time.Time) (int, error) {
	s.calls = append(s.calls, now)
	return s.count, s.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPublishScheduledUsesClock(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pub := &stubPublisher{count: 2}
	job := NewPublishScheduledJob(pub, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = fixedClock(now)

	task, err := NewTask(TaskPublishScheduled)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, pub.calls, 1)
	assert.Equal(t, now, pub.calls[0])
}

func TestPublishScheduledHonoursEarlierPayloadTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	at := now.Add(-time.Hour)
	pub := &stubPublisher{}
	job := NewPublishScheduledJob(pub, nil, nil)
	job.clock = fixedClock(now)

	task, err := NewPublishScheduledTask(at)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, at, pub.calls[0])
}

func TestPublishScheduledPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	job := NewPublishScheduledJob(&stubPublisher{err: boom}, nil, nil)

	task, err := NewPublishScheduledTask(time.Time{})
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), boom)
}

func TestPublishScheduledRejectsBadPayload(t *testing.T) {
	job := NewPublishScheduledJob(&stubPublisher{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskPublishScheduled, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewTaskUnknown(t *testing.T) {
	_, err := NewTask("mail:send")
	assert.Error(t, err)
}
