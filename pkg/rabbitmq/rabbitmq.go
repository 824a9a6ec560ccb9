// Package rabbitmq wraps the AMQP connection used for order lifecycle
// events and reconciliation-repair messages.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// Queue names. OrderEventsQueue carries lifecycle notifications (paid,
// failed, ready) for downstream consumers. RepairQueue carries references
// whose ledger insert succeeded but whose order transition did not; a
// consumer must re-drive those transitions.
const (
	OrderEventsQueue = "order_events"
	RepairQueue      = "reconciliation_repair"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ and declares the queues the pipeline
// publishes to.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range []string{OrderEventsQueue, RepairQueue} {
		_, err = ch.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
		}
	}

	log.WithField("queues", []string{OrderEventsQueue, RepairQueue}).
		Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// Publish marshals the payload to JSON and sends it to the named queue as a
// persistent message.
func (c *Client) Publish(queue string, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", queue, err)
	}

	err = c.channel.Publish(
		"",    // exchange: default
		queue, // routing key: the queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}

// Consume registers a handler on the named queue. Messages are acked on a
// nil handler result and nacked (requeued) otherwise.
func (c *Client) Consume(queue string, messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		queue, // queue
		"",    // consumer tag
		false, // auto-ack: manual acknowledgement
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				log.WithError(err).WithField("queue", queue).
					Warn("message handler failed, requeueing")
				if requeueErr := msg.Nack(false, true); requeueErr != nil {
					log.WithError(requeueErr).Error("failed to nack message")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.WithError(ackErr).Error("failed to ack message")
			}
		}
	}()

	return nil
}
