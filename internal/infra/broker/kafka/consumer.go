package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// defaultRetryDelay spaces out rejoins after a message failed to apply.
const defaultRetryDelay = time.Second

type Consumer struct {
	group      sarama.ConsumerGroup
	handler    MessageHandler
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewConsumer(brokers []string, groupID string, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{group: g, handler: handler, logger: logger, retryDelay: defaultRetryDelay}, nil
}

// Run consumes topics until ctx ends, rejoining the group after each rebalance.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Warn("kafka consumer error", "error", err)
		}
	}()
	for {
		err := c.group.Consume(ctx, topics, groupHandler{handler: c.handler, logger: c.logger, retryDelay: c.retryDelay})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	handler    MessageHandler
	logger     *slog.Logger
	retryDelay time.Duration
}

func (h groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks a message once handled. Malformed messages are logged and
// skipped. Any other failure leaves the message unmarked and ends the claim, so the
// group resumes from it after rejoining.
func (h groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		err := h.handler.Handle(sess.Context(), message)
		switch {
		case err == nil:
		case errors.Is(err, ErrMalformedBookingEvent):
			h.logger.Error("kafka message dropped",
				"topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
		default:
			h.logger.Warn("kafka message failed, will retry",
				"topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
			h.wait(sess.Context())
			return err
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

func (h groupHandler) wait(ctx context.Context) {
	if h.retryDelay <= 0 {
		return
	}
	t := time.NewTimer(h.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
