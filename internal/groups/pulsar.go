package groups

import (
	"context"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog"
)

// PulsarNotifier sends reassignment requests to a Pulsar topic keyed by group code.
type PulsarNotifier struct {
	client   pulsar.Client
	producer pulsar.Producer
	logger   zerolog.Logger
}

var _ Notifier = (*PulsarNotifier)(nil)

func NewPulsarNotifier(url, topic string, logger zerolog.Logger) (*PulsarNotifier, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create pulsar client: %w", err)
	}
	producer, err := client.CreateProducer(pulsar.ProducerOptions{Topic: topic})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create pulsar producer: %w", err)
	}
	return &PulsarNotifier{
		client:   client,
		producer: producer,
		logger:   logger.With().Str("component", "group-notifier").Str("topic", topic).Logger(),
	}, nil
}

func (n *PulsarNotifier) AdminLeaving(ctx context.Context, event AdminLeaving) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode admin-leaving event: %w", err)
	}
	_, err = n.producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     event.GroupCode,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("send admin-leaving event: %w", err)
	}
	n.logger.Info().Int64("user_id", event.UserID).Str("group_code", event.GroupCode).Msg("sent admin reassignment request")
	return nil
}

func (n *PulsarNotifier) Close() error {
	n.producer.Close()
	n.client.Close()
	return nil
}
