package alarm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsInOrder(t *testing.T) {
	d := NewDispatcher(quietLogger())
	defer d.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		d.Push(func(context.Context) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestDispatcher_SurvivesPanickingJob(t *testing.T) {
	d := NewDispatcher(quietLogger())
	defer d.Close()

	ran := false
	d.Push(func(context.Context) { panic("boom") })
	d.Push(func(context.Context) { ran = true })

	require.NoError(t, d.Drain(context.Background()))
	assert.True(t, ran)
}

func TestDispatcher_CloseRunsQueuedAndDropsLater(t *testing.T) {
	d := NewDispatcher(quietLogger())

	release := make(chan struct{})
	count := 0
	d.Push(func(context.Context) { <-release })
	d.Push(func(context.Context) { count++ })

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()
	close(release)
	<-closed

	d.Push(func(context.Context) { count++ })
	assert.Equal(t, 1, count)
	assert.NoError(t, d.Drain(context.Background()))
}

func TestDispatcher_DrainHonoursContext(t *testing.T) {
	d := NewDispatcher(quietLogger())
	defer d.Close()

	release := make(chan struct{})
	defer close(release)
	d.Push(func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Drain(ctx), context.DeadlineExceeded)
}
