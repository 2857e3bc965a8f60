package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesAndDrainsOnStop(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 8})
	q.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "t"}))
	}
	require.NoError(t, q.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestQueueRetriesFailedJob(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := NewQueue("retry", func(_ context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		assert.Equal(t, 2, job.Attempt)
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer func() { _ = q.Stop(context.Background()) }()

	require.NoError(t, q.Enqueue(Job{Type: "t"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueRejectsWhenFullOrClosed(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	q := NewQueue("full", func(context.Context, Job) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	err := q.Enqueue(Job{Type: "t"})
	assert.ErrorIs(t, err, ErrQueueClosed)

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{Type: "t"}))
	<-started
	require.NoError(t, q.Enqueue(Job{Type: "t"}))
	assert.ErrorIs(t, q.Enqueue(Job{Type: "t"}), ErrQueueFull)

	close(release)
	require.NoError(t, q.Stop(context.Background()))
	assert.ErrorIs(t, q.Enqueue(Job{Type: "t"}), ErrQueueClosed)
}

func TestQueueRecoversFromPanic(t *testing.T) {
	var calls int32
	q := NewQueue("panic", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		panic("boom")
	}, QueueConfig{MaxRetries: 0})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "t"}))
	require.NoError(t, q.Stop(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
