package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	MailQueueName = "storefront.mail"
)

// 通知メール1通ぶんのジョブ
type MailMessage struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// SetupConn handles the connection and queue declaration.
func SetupConn(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	// Simple retry logic for container startup
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		MailQueueName, // name
		true,          // durable
		false,         // auto-deleted
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	); err != nil {
		return nil, nil, fmt.Errorf("could not declare queue: %w", err)
	}

	return conn, ch, nil
}

type MailPublisher struct {
	ch *amqp.Channel
}

func NewMailPublisher(ch *amqp.Channel) *MailPublisher {
	return &MailPublisher{ch: ch}
}

// Enqueue はメールジョブを積むだけ。配送はworker側の責務。
func (p *MailPublisher) Enqueue(ctx context.Context, msg MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("could not marshal mail message: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		"",            // exchange (default)
		MailQueueName, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume はキューを購読してhandlerに1件ずつ渡す。
// handlerがerrorを返したら要再配送としてnackする。
func Consume(ctx context.Context, ch *amqp.Channel, handler func(MailMessage) error) error {
	deliveries, err := ch.Consume(
		MailQueueName, // queue
		"",            // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("could not start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}

			var msg MailMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				//壊れたメッセージは捨てる
				_ = d.Nack(false, false)
				continue
			}

			if err := handler(msg); err != nil {
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
