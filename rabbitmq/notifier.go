// Package rabbitmq publishes progress events to a RabbitMQ topic exchange.
// The event channel is used as the routing key.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/shelf"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultExchange is the exchange events are published to when none is
// configured.
const DefaultExchange = "shelf"

// Ensure Notifier implements shelf.Notifier at compile time.
var _ shelf.Notifier = (*Notifier)(nil)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Notifier implements shelf.Notifier over an AMQP channel.
type Notifier struct {
	channel  Channel
	conn     *amqp.Connection
	exchange string
	logger   *slog.Logger
}

// NewNotifier creates a Notifier that publishes on an already open channel.
func NewNotifier(ch Channel, exchange string, logger *slog.Logger) *Notifier {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Notifier{channel: ch, exchange: exchange, logger: logger}
}

// Dial connects to the broker at url and declares a durable topic exchange.
func Dial(url, exchange string, logger *slog.Logger) (*Notifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	n := NewNotifier(ch, exchange, logger)
	n.conn = conn

	err = ch.ExchangeDeclare(
		n.exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	n.logger.Info("connected to rabbitmq", "exchange", n.exchange)
	return n, nil
}

// Publish implements shelf.Notifier. Messages are transient; a broker
// restart may drop them.
func (n *Notifier) Publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return shelf.Errorf(shelf.EINVALID, "marshal %s event: %v", channel, err)
	}

	err = n.channel.PublishWithContext(
		ctx,
		n.exchange,
		channel,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Transient,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", channel, err)
	}

	n.logger.Debug("published event", "channel", channel, "bytes", len(body))
	return nil
}

// Close closes the channel and, when the Notifier owns it, the connection.
func (n *Notifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
