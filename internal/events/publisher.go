package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"
)

// Publisher delivers booking events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, events []BookingEvent) error
	Close() error
}

// AMQPPublisher publishes events as JSON messages to a durable RabbitMQ queue.
type AMQPPublisher struct {
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
}

// NewAMQPPublisher connects to RabbitMQ and declares the queue.
func NewAMQPPublisher(url, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &AMQPPublisher{
		connection: conn,
		channel:    ch,
		queueName:  queueName,
	}, nil
}

// Publish sends each event as a persistent message. It stops at the first failure.
func (p *AMQPPublisher) Publish(ctx context.Context, events []BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		err = p.channel.Publish(
			"",          // default exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         string(ev.Action),
				MessageId:    ev.BookingID.String() + ":" + string(ev.Action),
				Timestamp:    ev.OccurredAt,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish event %s: %w", ev.BookingID, err)
		}
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.connection.Close()
		return err
	}
	return p.connection.Close()
}

// LogPublisher writes events to the process log. It is used when no broker is configured.
type LogPublisher struct{}

// Publish logs every event.
func (LogPublisher) Publish(_ context.Context, events []BookingEvent) error {
	for _, ev := range events {
		log.Printf("booking event: action=%s booking=%s room=%s status=%s", ev.Action, ev.BookingID, ev.RoomID, ev.Status)
	}
	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error { return nil }
