package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher delivers order events.  Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is off.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// AMQPPublisher publishes events as persistent JSON messages on QueueName.
// It dials the broker per publish; events are low volume and this keeps
// the publisher free of connection state.
type AMQPPublisher struct {
	url    string
	logger *zap.Logger
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger.Named("publisher")}
}

// Publish sends ev.  Errors are logged and returned so the caller may
// ignore them without interrupting the request.
func (p *AMQPPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	err := p.publish(ctx, ev)
	if err != nil {
		p.logger.Warn("publish failed",
			zap.String("event", string(ev.Type)),
			zap.Uint64("order_id", ev.OrderID),
			zap.Error(err))
	}
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	}
	// Default exchange, routing key = queue name.
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// declare makes sure the durable queue exists.  It is idempotent.
func declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
