package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqplib "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/publisher"
)

// Consumer listens to RabbitMQ and dispatches RunMessages (with ACK callbacks) to a channel.
type Consumer struct {
	url     string
	conn    *amqplib.Connection
	channel *amqplib.Channel
	logger  *zap.Logger
	runs    chan<- *domain.RunMessage

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

// NewConsumer creates a new RabbitMQ consumer. Deliveries are not acknowledged
// on dispatch; the worker pool calls Ack or Nack once the run is over.
func NewConsumer(url string, runs chan<- *domain.RunMessage, logger *zap.Logger) (*Consumer, error) {
	c := &Consumer{
		url:     url,
		logger:  logger,
		runs:    runs,
		closeCh: make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Consumer) connect() error {
	conn, err := amqplib.Dial(c.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	// Runs take minutes; hold at most one unacknowledged trigger.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("amqp qos: %w", err)
	}

	if err := publisher.DeclareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	return nil
}

// Start consumes run triggers until ctx is cancelled or Close is called,
// redialing the broker whenever the delivery stream breaks.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if err == nil || c.isClosed() || ctx.Err() != nil {
			return nil
		}

		c.logger.Warn("AMQP consumer lost connection, reconnecting...", zap.Error(err))
		if !publisher.Redial(ctx, c.connect, c.isClosed, c.logger) {
			return nil
		}
	}
}

func (c *Consumer) isClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()

	if ch == nil {
		return fmt.Errorf("channel is nil")
	}

	deliveries, err := ch.Consume(
		publisher.QueueName,
		"",    // auto-generated consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	c.logger.Info("AMQP consumer started", zap.String("queue", publisher.QueueName))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("AMQP consumer stopping (context cancelled)")
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			if !c.dispatch(ctx, delivery) {
				return nil
			}
		}
	}
}

// dispatch hands one delivery to the run channel. Undecodable bodies are
// rejected to the dead letter queue. It returns false when ctx ended before
// the run could be handed over; the delivery is then requeued.
func (c *Consumer) dispatch(ctx context.Context, delivery amqplib.Delivery) bool {
	req, err := decodeRunRequest(delivery.Body)
	if err != nil {
		c.logger.Error("Failed to decode run request",
			zap.Error(err),
			zap.String("body", string(delivery.Body)),
		)
		_ = delivery.Nack(false, false)
		return true
	}

	c.logger.Debug("Received run request from queue",
		zap.String("run_id", req.RunID.String()),
		zap.String("kind", string(req.Kind)),
	)

	msg := &domain.RunMessage{
		Request: req,
		Ack:     func() error { return delivery.Ack(false) },
		Nack:    func(requeue bool) error { return delivery.Nack(false, requeue) },
	}

	select {
	case c.runs <- msg:
		return true
	case <-ctx.Done():
		_ = delivery.Nack(false, true)
		return false
	}
}

func decodeRunRequest(body []byte) (*domain.RunRequest, error) {
	var req domain.RunRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown run kind %q", domain.ErrValidation, req.Kind)
	}
	return &req, nil
}

// Close gracefully shuts down the consumer.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closeCh)

	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
