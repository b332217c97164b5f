package command

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/example/shipment-tracking/internal/platform/metrics"
)

var (
	ErrPublishQueueFull = errors.New("publish queue full")
	ErrPublisherClosed  = errors.New("publisher closed")
)

type pendingPublish struct {
	key   string
	event any
}

// AsyncPublisher hands notifications to a background worker so callers only
// pay for a channel send. Each delivery gets its own timeout, detached from
// the request that produced it.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan pendingPublish
	done   chan struct{}
}

func NewAsyncPublisher(next Publisher, queueSize int, timeout time.Duration, log *logger.Logger) *AsyncPublisher {
	if log == nil {
		log = logger.Nop()
	}
	if queueSize < 1 {
		queueSize = 1
	}
	p := &AsyncPublisher{
		next:    next,
		timeout: timeout,
		log:     log,
		queue:   make(chan pendingPublish, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues event without blocking. It fails only when the queue is
// full or the publisher has been closed.
func (p *AsyncPublisher) Publish(_ context.Context, key string, event any) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- pendingPublish{key: key, event: event}:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

// Close stops accepting notifications and waits for queued ones to be sent.
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		p.send(msg)
	}
}

func (p *AsyncPublisher) send(msg pendingPublish) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.next.Publish(ctx, msg.key, msg.event); err != nil {
		metrics.NotificationPublishFailuresTotal.Inc()
		p.log.Warn("publish shipment notification failed", "key", msg.key, "error", err)
	}
}
