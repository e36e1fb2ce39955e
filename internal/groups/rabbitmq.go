package groups

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RabbitNotifier publishes reassignment requests to a durable RabbitMQ queue.
type RabbitNotifier struct {
	conn   *amqp.Connection
	queue  string
	logger zerolog.Logger
}

var _ Notifier = (*RabbitNotifier)(nil)

// DialRabbit connects to url and makes sure queue exists.
func DialRabbit(url, queue string, logger zerolog.Logger) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	n, err := NewRabbitNotifier(conn, queue, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return n, nil
}

// NewRabbitNotifier wraps an open connection. The queue is declared up front
// so misconfiguration surfaces at startup.
func NewRabbitNotifier(conn *amqp.Connection, queue string, logger zerolog.Logger) (*RabbitNotifier, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	n := &RabbitNotifier{
		conn:   conn,
		queue:  queue,
		logger: logger.With().Str("component", "group-notifier").Str("queue", queue).Logger(),
	}
	if err := n.declareQueue(); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return n, nil
}

func (n *RabbitNotifier) declareQueue() error {
	ch, err := n.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		n.queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

func (n *RabbitNotifier) AdminLeaving(ctx context.Context, event AdminLeaving) error {
	body, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode admin-leaving event: %w", err)
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish admin-leaving event: %w", err)
	}
	n.logger.Info().Int64("user_id", event.UserID).Str("group_code", event.GroupCode).Msg("published admin reassignment request")
	return nil
}

func (n *RabbitNotifier) Close() error {
	return n.conn.Close()
}
