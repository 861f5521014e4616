package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/examiner/internal/config"
	"github.com/nikhilbhutani/examiner/internal/examiner"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type Client struct {
	client enqueuer
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(RedisOpt(cfg)),
	}
}

// RedisOpt converts the shared Redis settings for asynq.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueUsageRecord(ctx context.Context, payload UsageRecordPayload) error {
	return c.enqueue(ctx, TypeUsageRecord, payload, asynq.Queue(QueueUsage), asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
}

// ObserveTurn publishes the record for asynchronous persistence. It lets
// the client be registered as an examiner.Observer.
func (c *Client) ObserveTurn(ctx context.Context, rec examiner.TurnRecord) error {
	return c.EnqueueUsageRecord(ctx, UsageRecordPayload{Record: rec})
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
