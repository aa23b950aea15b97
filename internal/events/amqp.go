package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends each event as a persistent JSON message to the durable
// queue named after the event type, through the default exchange.
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	for _, queue := range []Type{BookingConfirmed, BookingCancelled} {
		_, err := ch.QueueDeclare(string(queue), true, false, false, false, nil)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, "", string(event.Type), false, false, msg)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var connErr error
	if p.conn != nil {
		connErr = p.conn.Close()
	}

	return errors.Join(p.ch.Close(), connErr)
}
