package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/tenantplatform/internal/config"
)

type Client struct {
	client   *asynq.Client
	maxRetry int
}

func NewClient(cfg config.RedisConfig, maxRetry int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		maxRetry: maxRetry,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueBillingEmail(ctx context.Context, payload BillingEmailPayload) error {
	return c.enqueue(ctx, TypeBillingEmail, payload,
		asynq.Queue(QueueBilling),
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(30*time.Second),
	)
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
