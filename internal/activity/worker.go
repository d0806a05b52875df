package activity

import (
	"context"
	"fmt"

	"item_catalog/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartWorker consumes queueName on its own channel until ctx is done or
// the delivery channel closes. Each delivery is acked manually after the
// event is recorded.
func StartWorker(ctx context.Context, conn *amqp.Connection, queueName string, repo Repository, metrics *observability.Metrics, id int) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d failed to open channel: %w", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d failed to set QoS: %w", id, err)
	}

	msgs, err := ch.Consume(
		queueName,
		fmt.Sprintf("activity-worker-%d", id),
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d failed to start consuming messages: %w", id, err)
	}

	c := &consumer{
		id:      id,
		queue:   queueName,
		repo:    repo,
		retry:   ch,
		metrics: metrics,
	}

	logrus.Infof("Worker %d started", id)
	return c.run(ctx, msgs)
}

func (c *consumer) run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Worker %d stopping", c.id)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d delivery channel closed", c.id)
			}
			c.handle(ctx, msg)
		}
	}
}
