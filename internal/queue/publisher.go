package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"item_catalog/internal/activity"
	"item_catalog/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends activity events to a durable queue, one channel per
// message since amqp channels are not safe for concurrent publishing.
type Publisher struct {
	open    func() (publishChannel, error)
	queue   string
	metrics *observability.Metrics
}

func NewPublisher(conn *amqp.Connection, queueName string, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		open: func() (publishChannel, error) {
			ch, err := CreateChannel(conn)
			if err != nil {
				return nil, err
			}
			return ch, nil
		},
		queue:   queueName,
		metrics: metrics,
	}
}

func (p *Publisher) Publish(ctx context.Context, evt activity.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := p.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID,
			Type:         string(evt.Type),
			Timestamp:    evt.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event %s: %w", evt.Type, err)
	}

	p.metrics.IncPublished(p.queue)
	return nil
}
