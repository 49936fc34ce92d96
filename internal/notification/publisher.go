package notification

import (
	"context"

	"bestea-be/internal/logger"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// LogPublisher writes messages to the log instead of a broker. It is used
// when no RabbitMQ URL is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg Message) error {
	logger.FromCtx(ctx).Info("order notification",
		zap.String("layer", "notification"),
		zap.String("type", msg.Type),
		zap.String("order_number", msg.OrderNumber),
		zap.String("status", msg.Status),
		zap.Uint("customer_id", msg.UserID),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
