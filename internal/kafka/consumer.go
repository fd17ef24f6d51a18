package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one flight event message. Returning an error stops
// consumption and leaves the message uncommitted.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consumer reads the flight event topic as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer joins groupID on topic. A new group starts from the oldest
// retained event so no change goes unrecorded.
func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			StartOffset:       kafka.FirstOffset,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
			MaxWait:           time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume hands each message to handler and commits it once handled. It
// returns nil when ctx is done.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch flight event: %w", err)
		}

		if err := handler(ctx, msg); err != nil {
			return fmt.Errorf("handle flight event at offset %d: %w", msg.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("commit flight event at offset %d: %w", msg.Offset, err)
		}
	}
}
