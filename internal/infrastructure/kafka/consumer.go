package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads a topic as part of a consumer group. Offsets are committed
// after the handler returns, so delivery is at-least-once.
type Consumer struct {
	reader       *kafka.Reader
	log          *logger.Logger
	fetchBackoff time.Duration
}

const defaultFetchBackoff = time.Second

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{
		reader:       reader,
		log:          log.With("topic", topic, "group", groupID),
		fetchBackoff: defaultFetchBackoff,
	}
}

func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				// reader closed
				return nil
			}
			c.log.Warn("fetch message failed", "error", err, "retry_in", c.fetchBackoff)
			if err := sleepCtx(ctx, c.fetchBackoff); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			// poison messages are logged and skipped rather than retried forever
			c.log.Error("handle message failed",
				"partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key), "error", err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("commit offset failed", "offset", msg.Offset, "error", err)
		}
	}
}

// sleepCtx waits for d or until ctx is done, returning ctx.Err() in the latter case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
