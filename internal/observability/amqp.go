package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends one JSON event with correlation headers. Satisfied by
// EventPublisher; the process-wide instance is installed via SetPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, event EventEnvelope, headers map[string]string) error
}

// EventPublisher delivers lifecycle events to the bleepblorp.events topic
// exchange. It shares the exchange with the audit publisher in
// internal/rabbitmq but carries per-event correlation headers the audit
// path does not need.
type EventPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
}

// NewEventPublisher dials RabbitMQ and declares the events exchange.
func NewEventPublisher(url, exchange string) (*EventPublisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}

	connection, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		connection.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		connection.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &EventPublisher{connection: connection, channel: channel, exchange: exchange}, nil
}

func (p *EventPublisher) PublishJSON(ctx context.Context, routingKey string, event EventEnvelope, headers map[string]string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	table := amqp.Table{}
	for key, value := range headers {
		table[key] = value
	}

	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      table,
		Body:         body,
	})
}

func (p *EventPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.connection != nil {
		return p.connection.Close()
	}
	return nil
}

var defaultPublisher Publisher

// SetPublisher installs the process-wide event publisher. Left unset,
// PublishEvent is a no-op so the feeds work without a broker.
func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent sends one envelope through the installed publisher,
// counting failures on the AMQP error metric.
func PublishEvent(ctx context.Context, routingKey string, event EventEnvelope, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}

	if err := defaultPublisher.PublishJSON(ctx, routingKey, event, headers); err != nil {
		IncAMQPPublishError()
		return err
	}
	return nil
}
