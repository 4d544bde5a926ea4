package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/simple-message-broker/pkg/core"
	"github.com/jdziat/simple-message-broker/pkg/queue"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := New()

	q1, err := r.GetOrCreate("first")
	require.NoError(t, err)
	require.NotNil(t, q1)
	assert.Equal(t, "first", q1.Name())

	q2, err := r.GetOrCreate("first")
	require.NoError(t, err)
	assert.Same(t, q1, q2, "same name must yield the same instance")

	other, err := r.GetOrCreate("second")
	require.NoError(t, err)
	assert.NotSame(t, q1, other)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Get(t *testing.T) {
	r := New()

	_, ok := r.Get("missing")
	assert.False(t, ok)

	created, err := r.GetOrCreate("present")
	require.NoError(t, err)

	got, ok := r.Get("present")
	assert.True(t, ok)
	assert.Same(t, created, got)
}

func TestRegistry_ConcurrentFirstAccess(t *testing.T) {
	const callers = 32

	r := New()
	var wg sync.WaitGroup
	got := make([]*queue.Queue, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := r.GetOrCreate("contended")
			assert.NoError(t, err)
			got[i] = q
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, r.Len(), "exactly one queue per name")
	for i := 1; i < callers; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestRegistry_MaxQueues(t *testing.T) {
	r := New(WithMaxQueues(2))

	_, err := r.GetOrCreate("a")
	require.NoError(t, err)
	_, err = r.GetOrCreate("b")
	require.NoError(t, err)

	_, err = r.GetOrCreate("c")
	assert.ErrorIs(t, err, core.ErrTooManyQueues)

	// Existing names still resolve at the limit.
	_, err = r.GetOrCreate("a")
	assert.NoError(t, err)
}

func TestRegistry_QueueOptionsPropagate(t *testing.T) {
	r := New(WithQueueOptions(queue.WithMaxMessages(1)))

	q, err := r.GetOrCreate("bounded")
	require.NoError(t, err)

	_, err = q.Enqueue(json.RawMessage(`{}`))
	require.NoError(t, err)
	_, err = q.Enqueue(json.RawMessage(`{}`))
	assert.ErrorIs(t, err, core.ErrQueueFull)
}

func TestRegistry_Names(t *testing.T) {
	r := New()
	for i := 0; i < 3; i++ {
		_, err := r.GetOrCreate(fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"q0", "q1", "q2"}, r.Names())
}

func TestRegistry_Close(t *testing.T) {
	r := New()
	q, err := r.GetOrCreate("doomed")
	require.NoError(t, err)

	r.Close()

	_, err = r.GetOrCreate("doomed")
	assert.ErrorIs(t, err, core.ErrBrokerClosed)
	_, err = r.GetOrCreate("new")
	assert.ErrorIs(t, err, core.ErrBrokerClosed)

	_, err = q.Dequeue(context.Background(), 0)
	assert.ErrorIs(t, err, core.ErrQueueClosed)

	// Idempotent.
	r.Close()
}
