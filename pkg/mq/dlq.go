package mq

import (
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// DLQExchangeName receives messages the consumer refuses to requeue.
const DLQExchangeName = "opsboard.events.dlq"

// ErrPermanent marks a handler failure that redelivery cannot fix, e.g. an
// undecodable payload. The consumer dead-letters such messages instead of
// requeueing them.
var ErrPermanent = errors.New("permanent handler failure")

// DeclareDLQ declares the dead-letter exchange and a per-queue dead-letter
// queue bound to routingKey. The main queue routes here through its
// x-dead-letter-exchange argument when a message is nacked without requeue.
func DeclareDLQ(ch *amqp091.Channel, queueName, routingKey string) error {
	if err := ch.ExchangeDeclare(DLQExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dlq exchange: %w", err)
	}

	q, err := ch.QueueDeclare(queueName+".dlq", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare dlq queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, DLQExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind dlq queue: %w", err)
	}
	return nil
}
