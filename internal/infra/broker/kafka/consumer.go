package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer runs one consumer group over a fixed handler. Offsets start at the
// newest message: a fresh instance has an empty cache and nothing to catch up on.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	if !cfg.Version.IsAtLeast(sarama.V2_5_0_0) {
		cfg.Version = sarama.V2_5_0_0
	}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{group: g, handler: handler, logger: logger}, nil
}

// Run consumes until ctx ends or the group is closed, rejoining after each
// rebalance.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.Warn("kafka consumer error", "err", err)
		}
	}()
	for {
		err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler, logger: c.logger})
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
	logger  *slog.Logger
}

func (h consumerGroupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	h.logger.Info("kafka partitions assigned", "claims", sess.Claims(), "generation", sess.GenerationID())
	return nil
}

func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every message, including ones the handler rejected, so a
// poison message cannot stall its partition.
func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil {
			h.logger.Warn("kafka message dropped", "topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "err", err)
		}
		sess.MarkMessage(message, "")
	}
	return nil
}
