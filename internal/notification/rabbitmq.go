package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bestea-be/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DefaultExchange = "order_exchange"

	// NotificationQueue receives every order event.
	NotificationQueue = "order_notifications_queue"
	allOrderEvents    = "order.#"
)

type RabbitMQConfig struct {
	URL      string
	Exchange string
	// DialAttempts defaults to 5.
	DialAttempts int
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       channel
	exchange string
}

// NewRabbitMQPublisher dials the broker with retry, declares the topic
// exchange and binds the notification queue to every order event.
func NewRabbitMQPublisher(cfg RabbitMQConfig) (*RabbitMQPublisher, error) {
	log := logger.L().With(zap.String("layer", "notification"))

	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	attempts := cfg.DialAttempts
	if attempts <= 0 {
		attempts = 5
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		retry := time.Duration(i*i)*time.Second + time.Second
		log.Warn("failed to connect to RabbitMQ, retrying",
			zap.Duration("retry_in", retry),
			zap.Error(err),
		)
		time.Sleep(retry)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq publisher ready", zap.String("exchange", cfg.Exchange))
	return &RabbitMQPublisher{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	q, err := ch.QueueDeclare(
		NotificationQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", NotificationQueue, err)
	}

	if err := ch.QueueBind(q.Name, allOrderEvents, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", q.Name, exchange, err)
	}
	return nil
}

// Publish sends msg as persistent JSON with the event type as routing key.
// amqp channels are not safe for concurrent publishing, so calls are
// serialised.
func (p *RabbitMQPublisher) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		msg.RoutingKey(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID.String(),
			Timestamp:    msg.OccurredAt,
			Type:         msg.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s to exchange %s: %w", msg.RoutingKey(), p.exchange, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
