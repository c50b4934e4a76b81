package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var handled atomic.Int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{ID: "j", Type: "recalculate"}))
	}
	require.Eventually(t, func() bool { return handled.Load() == 5 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return q.Stats().Processed == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		attempts.Add(1)
		return errors.New("db unavailable")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "j1"}))
	require.Eventually(t, func() bool { return q.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 3, attempts.Load())
	assert.EqualValues(t, 2, q.Stats().Retried)
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(context.Background(), Job{}))
}

func TestEnqueueHonoursCallerContext(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "running"}))
	require.Eventually(t, func() bool { return q.Stats().Pending == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "buffered"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{ID: "overflow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPermanentErrorsSkipRetries(t *testing.T) {
	var attempts atomic.Int32
	dead := make(chan Job, 1)
	q := NewQueue("permanent", func(ctx context.Context, job Job) error {
		attempts.Add(1)
		return Permanent(errors.New("student removed"))
	}, QueueConfig{MaxRetries: 5, RetryDelay: time.Millisecond, OnDead: func(j Job, err error) {
		assert.True(t, IsPermanent(err))
		dead <- j
	}})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "gone"}))
	select {
	case j := <-dead:
		assert.Equal(t, "gone", j.ID)
	case <-time.After(time.Second):
		t.Fatal("job never reached OnDead")
	}
	assert.EqualValues(t, 1, attempts.Load())
	assert.Zero(t, q.Stats().Retried)
}

func TestJobTimeoutCancelsAttempt(t *testing.T) {
	var sawDeadline atomic.Bool
	q := NewQueue("slow", func(ctx context.Context, job Job) error {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}, QueueConfig{MaxRetries: -1, JobTimeout: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "slow"}))
	require.Eventually(t, func() bool { return q.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, sawDeadline.Load())
}

func TestBackoffDoublesUpToCap(t *testing.T) {
	q := NewQueue("backoff", func(context.Context, Job) error { return nil }, QueueConfig{
		RetryDelay: 10 * time.Millisecond, MaxRetryDelay: 50 * time.Millisecond,
	})
	assert.Equal(t, 10*time.Millisecond, q.backoff(0))
	assert.Equal(t, 20*time.Millisecond, q.backoff(1))
	assert.Equal(t, 40*time.Millisecond, q.backoff(2))
	assert.Equal(t, 50*time.Millisecond, q.backoff(3))
}
