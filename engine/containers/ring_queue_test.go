package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueue_FIFO(t *testing.T) {
	rq := NewRingQueue(4)

	for _, v := range []int{1, 2, 3} {
		require.NoError(t, rq.Enqueue(v))
	}
	assert.Equal(t, 3, rq.Len())

	for _, want := range []int{1, 2, 3} {
		got, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, rq.IsEmpty())
}

func TestRingQueue_FullAndEmpty(t *testing.T) {
	rq := NewRingQueue(2)

	require.NoError(t, rq.Enqueue("a"))
	require.NoError(t, rq.Enqueue("b"))
	assert.True(t, rq.IsFull())
	assert.ErrorIs(t, rq.Enqueue("c"), ErrQueueFull)

	_, err := rq.Dequeue()
	require.NoError(t, err)
	_, err = rq.Dequeue()
	require.NoError(t, err)

	_, err = rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = rq.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueue_WrapsAround(t *testing.T) {
	rq := NewRingQueue(3)

	// Fill, drain partially, refill past the physical end.
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	_, err := rq.Dequeue()
	require.NoError(t, err)
	require.NoError(t, rq.Enqueue(3))
	require.NoError(t, rq.Enqueue(4))

	for _, want := range []int{2, 3, 4} {
		got, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRingQueue_PeekDoesNotRemove(t *testing.T) {
	rq := NewRingQueue(2)
	require.NoError(t, rq.Enqueue(42))

	got, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, rq.Len())
}
