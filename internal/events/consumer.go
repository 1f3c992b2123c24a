package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CartClearer is the slice of the cart service the consumer needs.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// Consumer empties the purchaser's stored cart once their checkout has
// been confirmed, so a reload after payment does not resurrect the items.
type Consumer struct {
	carts  CartClearer
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(carts CartClearer, logger *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  "cart-clear-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{carts: carts, reader: reader, logger: logger}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("error closing kafka reader", zap.Error(err))
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Warn("error reading message", zap.Error(err))
		return
	}

	var event BookingConfirmed
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.logger.Warn("error parsing message", zap.Error(err))
		return
	}
	if event.UserID == "" {
		c.logger.Warn("booking confirmed event missing user_id")
		return
	}

	if err := c.carts.Clear(ctx, event.UserID); err != nil {
		c.logger.Warn("failed to clear cart after confirmation",
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}
