package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client enqueues tasks on the default queue.
type Client struct {
	client *asynq.Client
}

// NewClient connects an asynq client to Redis.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// Enqueue submits task; options given by the caller win over the queue default.
func (c *Client) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, task, append([]asynq.Option{asynq.Queue(QueueDefault)}, opts...)...)
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
