package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BookingEventHandler processes one decoded event. A non-nil error stops the consumer
// without committing the message.
type BookingEventHandler func(ctx context.Context, event BookingEvent) error

type Consumer struct {
	reader messageReader
	commit bool
	logger *slog.Logger
}

type ConsumerOption func(*Consumer)

func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewConsumer(brokers []string, groupID, topic string, opts ...ConsumerOption) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return newConsumer(reader, groupID != "", opts...)
}

func newConsumer(reader messageReader, commit bool, opts ...ConsumerOption) *Consumer {
	c := &Consumer{reader: reader, commit: commit, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads booking events until ctx is done or the handler fails.
// Offsets are committed one message at a time after the handler succeeds;
// payloads that are not booking events are logged and committed so they
// are never redelivered.
func (c *Consumer) Consume(ctx context.Context, handler BookingEventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeBookingEvent(msg)
		if err != nil {
			c.logger.Warn("skipping undecodable event",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		} else {
			if err := handler(ctx, event); err != nil {
				return fmt.Errorf("handle %s event for %s: %w", event.Type, event.InvoiceID, err)
			}
			c.logger.Debug("event handled",
				"type", event.Type, "invoice_id", event.InvoiceID, "partition", msg.Partition, "offset", msg.Offset)
		}

		if !c.commit {
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// DecodeBookingEvent unmarshals a message value produced by Producer.Publish.
func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	err := json.Unmarshal(msg.Value, &event)
	return event, err
}
