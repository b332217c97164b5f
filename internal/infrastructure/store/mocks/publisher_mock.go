package mocks

import (
	"context"
	"sync"
)

// MockPublisher captures published messages.
type MockPublisher struct {
	mu         sync.Mutex
	Published  []PublishCall
	PublishErr error

	// Block, when set, holds every Publish until it is closed or the
	// caller's context ends.
	Block chan struct{}
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key         string
	Event       any
	HasDeadline bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) Publish(ctx context.Context, key string, event any) error {
	if p.Block != nil {
		select {
		case <-p.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, hasDeadline := ctx.Deadline()
	p.Published = append(p.Published, PublishCall{Key: key, Event: event, HasDeadline: hasDeadline})
	return p.PublishErr
}

func (p *MockPublisher) Calls() []PublishCall {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]PublishCall, len(p.Published))
	copy(out, p.Published)
	return out
}
