package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Pid  int
	Kind string
}

func TestQueue_PublishConsume(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{Pid: 1, Kind: "dispatch"}))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload{Pid: 1, Kind: "dispatch"}, *message.T())
	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double ack")
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_TryPublish(t *testing.T) {
	queue := NewQueue[payload](Config{QueueBuffer: 2})
	assert.True(t, queue.TryPublish(&payload{Pid: 1}))
	assert.True(t, queue.TryPublish(&payload{Pid: 2}))
	assert.False(t, queue.TryPublish(&payload{Pid: 3}))
	assert.EqualValues(t, 1, queue.Dropped())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := queue.Publish(ctx, &payload{Pid: 4})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestQueue_Nack(t *testing.T) {
	testCases := []struct {
		description   string
		maxRetries    int
		expectSize    int
		expectDropped int64
	}{
		{description: "requeued", maxRetries: 1, expectSize: 1},
		{description: "retries exhausted", maxRetries: 0, expectSize: 0, expectDropped: 1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			queue := NewQueue[payload](Config{QueueBuffer: 4, MaxRetries: testCase.maxRetries})
			ctx := context.Background()
			require.NoError(t, queue.Publish(ctx, &payload{Pid: 9}))
			message, err := queue.Consume(ctx)
			require.NoError(t, err)
			assert.NoError(t, message.Nack(errors.New("observer busy")))
			assert.Error(t, message.Nack(nil))
			assert.Equal(t, testCase.expectSize, queue.Size())
			assert.Equal(t, testCase.expectDropped, queue.Dropped())
		})
	}
}

func TestQueue_ConsumeCancelled(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
