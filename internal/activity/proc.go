package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"item_catalog/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	RetryHeader = "x-retry-count"
	MaxRetries  = 3
)

type republisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// consumer processes deliveries for one worker goroutine.
type consumer struct {
	id      int
	queue   string
	repo    Repository
	retry   republisher
	metrics *observability.Metrics
}

func decodeEvent(body []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return Event{}, err
	}
	if !evt.Type.Valid() {
		return Event{}, fmt.Errorf("unknown event type %q", evt.Type)
	}
	if evt.ID == "" || evt.ItemID == "" {
		return Event{}, fmt.Errorf("event is missing id or item_id")
	}
	return evt, nil
}

func retryCount(headers amqp.Table) int32 {
	switch v := headers[RetryHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

func (c *consumer) handle(ctx context.Context, msg amqp.Delivery) {
	c.metrics.IncConsumed(c.queue)

	evt, err := decodeEvent(msg.Body)
	if err != nil {
		logrus.WithError(err).WithField("worker", c.id).Error("invalid activity payload")
		c.metrics.IncActivity("unknown", "invalid")
		_ = msg.Nack(false, false)
		return
	}

	retries := retryCount(msg.Headers)
	log := logrus.WithFields(logrus.Fields{
		"worker":     c.id,
		"event_id":   evt.ID,
		"event_type": evt.Type,
		"item_id":    evt.ItemID,
		"retry":      retries,
	})
	log.Debug("Processing activity event")

	inserted, err := c.repo.Record(ctx, evt)
	if err == nil {
		status := "recorded"
		if !inserted {
			status = "duplicate"
		}
		c.metrics.IncActivity(string(evt.Type), status)
		_ = msg.Ack(false)
		return
	}

	log.WithError(err).Error("Failed to record activity event")

	if ctx.Err() != nil {
		_ = msg.Nack(false, true)
		return
	}

	if retries >= MaxRetries {
		log.Warn("Max retries reached, dropping activity event")
		c.metrics.IncActivity(string(evt.Type), "dropped")
		_ = msg.Nack(false, false)
		return
	}

	if err := c.republish(ctx, &msg, retries+1); err != nil {
		log.WithError(err).Error("Failed to republish activity event")
		c.metrics.IncActivity(string(evt.Type), "dropped")
		_ = msg.Nack(false, false)
		return
	}

	log.Infof("Activity event requeued (retry %d/%d)", retries+1, MaxRetries)
	c.metrics.IncActivity(string(evt.Type), "retried")
	c.metrics.IncPublished(c.queue)
	_ = msg.Ack(false)
}

func (c *consumer) republish(ctx context.Context, msg *amqp.Delivery, retries int32) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[RetryHeader] = retries

	return c.retry.PublishWithContext(
		ctx,
		"",      // exchange
		c.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.MessageId,
			Type:         msg.Type,
			Timestamp:    msg.Timestamp,
			Headers:      headers,
			Body:         msg.Body,
		},
	)
}
