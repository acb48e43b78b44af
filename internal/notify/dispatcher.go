// Package notify hands billing notifications to the task queue without
// blocking the request that produced them.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/tenantplatform/internal/queue"
)

const DefaultQueueSize = 256

type BillingNotification struct {
	TenantID   uuid.UUID
	Email      string
	Summary    string
	TotalUsage int
}

type Enqueuer interface {
	EnqueueBillingEmail(ctx context.Context, payload queue.BillingEmailPayload) error
}

// Dispatcher owns a bounded buffer drained by a single goroutine. Dispatch
// never blocks: when the buffer is full the notification is dropped.
type Dispatcher struct {
	enqueuer Enqueuer
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan BillingNotification
	done   chan struct{}
}

func NewDispatcher(e Enqueuer, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	d := &Dispatcher{
		enqueuer: e,
		timeout:  5 * time.Second,
		jobs:     make(chan BillingNotification, size),
		done:     make(chan struct{}),
	}
	go d.processLoop()
	return d
}

// Dispatch reports whether n was accepted for hand-off.
func (d *Dispatcher) Dispatch(n BillingNotification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Warn("billing dispatcher closed, dropping", "tenant_id", n.TenantID)
		return false
	}

	select {
	case d.jobs <- n:
		return true
	default:
		slog.Warn("billing notification queue full, dropping", "tenant_id", n.TenantID)
		return false
	}
}

// Close stops accepting notifications and waits until the buffer is drained
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) processLoop() {
	defer close(d.done)
	for n := range d.jobs {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n BillingNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.enqueuer.EnqueueBillingEmail(ctx, queue.BillingEmailPayload{
		TenantID:   n.TenantID.String(),
		Email:      n.Email,
		Summary:    n.Summary,
		TotalUsage: n.TotalUsage,
	})
	if err != nil {
		slog.Error("billing notification enqueue failed", "error", err, "tenant_id", n.TenantID)
	}
}
