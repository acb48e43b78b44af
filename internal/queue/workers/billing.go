package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/tenantplatform/internal/queue"
)

type BillingEmail struct {
	TenantID   uuid.UUID
	To         string
	Summary    string
	TotalUsage int
}

type Mailer interface {
	Send(ctx context.Context, email BillingEmail) error
}

// LogMailer writes billing emails to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, e BillingEmail) error {
	m.logger.InfoContext(ctx, "billing email",
		"tenant_id", e.TenantID,
		"to", e.To,
		"summary", e.Summary,
		"total_usage", e.TotalUsage,
	)
	return nil
}

type BillingWorker struct {
	mailer Mailer
}

func NewBillingWorker(mailer Mailer) *BillingWorker {
	return &BillingWorker{mailer: mailer}
}

func (w *BillingWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.BillingEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("parse tenant ID: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Email == "" {
		return fmt.Errorf("billing email without recipient: %w", asynq.SkipRetry)
	}

	slog.Info("sending billing email", "tenant_id", tenantID)

	err = w.mailer.Send(ctx, BillingEmail{
		TenantID:   tenantID,
		To:         payload.Email,
		Summary:    payload.Summary,
		TotalUsage: payload.TotalUsage,
	})
	if err != nil {
		return fmt.Errorf("send billing email: %w", err)
	}
	return nil
}
