package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/shipment-tracking/internal/infrastructure/store/mocks"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncPublisher_DeliversOnClose(t *testing.T) {
	next := mocks.NewMockPublisher()
	p := NewAsyncPublisher(next, 8, time.Second, logger.Nop())

	require.NoError(t, p.Publish(context.Background(), "s-1", "a"))
	require.NoError(t, p.Publish(context.Background(), "s-1", "b"))
	p.Close()

	calls := next.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "s-1", calls[0].Key)
	assert.Equal(t, "a", calls[0].Event)
	assert.Equal(t, "b", calls[1].Event)
	assert.True(t, calls[0].HasDeadline)
}

func TestAsyncPublisher_DoesNotBlockCaller(t *testing.T) {
	next := mocks.NewMockPublisher()
	next.Block = make(chan struct{})
	p := NewAsyncPublisher(next, 8, time.Minute, logger.Nop())

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Publish(context.Background(), "s-1", i))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(next.Block)
	p.Close()
	assert.Len(t, next.Calls(), 5)
}

func TestAsyncPublisher_QueueFull(t *testing.T) {
	next := mocks.NewMockPublisher()
	next.Block = make(chan struct{})
	p := NewAsyncPublisher(next, 1, time.Minute, logger.Nop())

	// one message in the blocked worker plus one queued is the most that fits
	full := 0
	for i := 0; i < 3; i++ {
		if err := p.Publish(context.Background(), "s-1", i); err != nil {
			assert.ErrorIs(t, err, ErrPublishQueueFull)
			full++
		}
	}
	assert.GreaterOrEqual(t, full, 1)

	close(next.Block)
	p.Close()
}

func TestAsyncPublisher_TimeoutDetachedFromCaller(t *testing.T) {
	next := mocks.NewMockPublisher()
	next.Block = make(chan struct{})
	defer close(next.Block)
	p := NewAsyncPublisher(next, 1, 20*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Publish(ctx, "s-1", "a"))
	cancel()

	start := time.Now()
	p.Close()

	// the blocked send gave up on its own deadline, not the cancelled caller
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, next.Calls())
}

func TestAsyncPublisher_PublishAfterClose(t *testing.T) {
	p := NewAsyncPublisher(mocks.NewMockPublisher(), 1, time.Second, logger.Nop())
	p.Close()
	p.Close()

	err := p.Publish(context.Background(), "s-1", "a")
	assert.True(t, errors.Is(err, ErrPublisherClosed))
}

func TestHandler_SlowPublisherDoesNotDelayWrite(t *testing.T) {
	st := mocks.NewMockStore()
	next := mocks.NewMockPublisher()
	next.Block = make(chan struct{})
	async := NewAsyncPublisher(next, 16, time.Minute, logger.Nop())
	handler := NewHandler(st, async, logger.Nop())
	ctx := context.Background()

	m, err := handler.CreateMerchant(ctx, CreateMerchant{Name: "Acme"})
	require.NoError(t, err)

	start := time.Now()
	sh, err := handler.CreateShipment(ctx, CreateShipment{Name: "Box1", MerchantID: m.ID})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(next.Block)
	async.Close()
	calls := next.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, sh.ID.String(), calls[0].Key)
}
