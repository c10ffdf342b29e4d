package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

const (
	// ExchangeName is the direct exchange run triggers are published to.
	ExchangeName = "setforge.direct"
	// RoutingKey routes run triggers to QueueName.
	RoutingKey = "run"
	// QueueName is the durable queue the worker consumes run triggers from.
	QueueName = "set_runs"

	deadLetterExchange = "setforge.dlx"
	deadLetterQueue    = "set_runs_dead_letter"

	reconnectDelay    = 2 * time.Second
	maxReconnectDelay = 30 * time.Second

	publishTimeout = 5 * time.Second
)

// Publisher publishes run triggers to the message broker.
type Publisher interface {
	Publish(ctx context.Context, req *domain.RunRequest) error
	Close() error
}

type rabbitPublisher struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
	mu      sync.RWMutex
	closed  bool
}

// NewRabbitMQPublisher connects to url and declares the run topology.
func NewRabbitMQPublisher(url string, logger *zap.Logger) (Publisher, error) {
	p := &rabbitPublisher{
		url:    url,
		logger: logger,
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	go p.watchConnection()

	return p, nil
}

// DeclareTopology declares the run exchange, queue and dead letter queue on ch.
// Both the publisher and the worker consumer call it, so either may start first.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(deadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(deadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare DLQ: %w", err)
	}
	if err := ch.QueueBind(deadLetterQueue, "", deadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": deadLetterExchange,
		"x-queue-type":           "quorum",
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: bind queue: %w", err)
	}
	return nil
}

func (p *rabbitPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq: channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}

	if err := DeclareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()

	p.logger.Info("RabbitMQ publisher initialized",
		zap.String("exchange", ExchangeName),
		zap.String("queue", QueueName),
	)
	return nil
}

// watchConnection redials whenever the broker drops the connection, until Close.
func (p *rabbitPublisher) watchConnection() {
	for {
		p.mu.RLock()
		conn, closed := p.conn, p.closed
		p.mu.RUnlock()
		if closed || conn == nil {
			return
		}

		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok {
			// Closed without an error: our own Close.
			return
		}
		p.logger.Warn("RabbitMQ connection lost, reconnecting...", zap.String("reason", reason.Error()))

		if !Redial(context.Background(), p.connect, p.isClosed, p.logger) {
			return
		}
	}
}

func (p *rabbitPublisher) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

func (p *rabbitPublisher) Publish(ctx context.Context, req *domain.RunRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal run request: %w", err)
	}

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("rabbitmq: channel not available (reconnecting)")
	}

	confirm := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(publishCtx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    req.RunID.String(),
			Type:         string(req.Kind),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}

	select {
	case ack := <-confirm:
		if !ack.Ack {
			return fmt.Errorf("rabbitmq: broker nacked message (run_id=%s)", req.RunID)
		}
	case <-publishCtx.Done():
		return fmt.Errorf("rabbitmq: publish confirmation timeout (run_id=%s)", req.RunID)
	}

	p.logger.Debug("Published run request to RabbitMQ",
		zap.String("run_id", req.RunID.String()),
		zap.String("kind", string(req.Kind)),
		zap.Bool("dry_run", req.DryRun),
	)
	return nil
}

func (p *rabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
