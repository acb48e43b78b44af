package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/tenantplatform/internal/queue"
)

type fakeEnqueuer struct {
	mu      sync.Mutex
	got     []queue.BillingEmailPayload
	release chan struct{}
	err     error
}

func (f *fakeEnqueuer) EnqueueBillingEmail(_ context.Context, p queue.BillingEmailPayload) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, p)
	return f.err
}

func (f *fakeEnqueuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func TestDispatchDelivers(t *testing.T) {
	f := &fakeEnqueuer{}
	d := NewDispatcher(f, 4)
	tid := uuid.New()

	assert.True(t, d.Dispatch(BillingNotification{TenantID: tid, Email: "a@acme.io", Summary: "F1: 3; F2: 1", TotalUsage: 4}))
	require.NoError(t, d.Close(context.Background()))

	require.Equal(t, 1, f.count())
	assert.Equal(t, queue.BillingEmailPayload{TenantID: tid.String(), Email: "a@acme.io", Summary: "F1: 3; F2: 1", TotalUsage: 4}, f.got[0])
}

func TestDispatchNeverBlocksWhenFull(t *testing.T) {
	f := &fakeEnqueuer{release: make(chan struct{})}
	d := NewDispatcher(f, 1)

	// The first notification may be taken by the worker goroutine, which
	// then blocks; the buffer holds one more. Anything beyond is dropped.
	start := time.Now()
	accepted := 0
	for i := 0; i < 10; i++ {
		if d.Dispatch(BillingNotification{TenantID: uuid.New()}) {
			accepted++
		}
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.LessOrEqual(t, accepted, 2)
	assert.GreaterOrEqual(t, accepted, 1)

	close(f.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, accepted, f.count())
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	d := NewDispatcher(&fakeEnqueuer{}, 1)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.False(t, d.Dispatch(BillingNotification{TenantID: uuid.New()}))
}

func TestEnqueueFailureIsSwallowed(t *testing.T) {
	f := &fakeEnqueuer{err: errors.New("redis down")}
	d := NewDispatcher(f, 1)

	assert.True(t, d.Dispatch(BillingNotification{TenantID: uuid.New()}))
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, f.count())
}

func TestCloseHonoursContext(t *testing.T) {
	f := &fakeEnqueuer{release: make(chan struct{})}
	d := NewDispatcher(f, 1)
	d.Dispatch(BillingNotification{TenantID: uuid.New()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(f.release)
}
