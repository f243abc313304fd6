package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefineTopic declares the durable exchange and queue for one topic. Safe to
// call from every process that touches the topic; declaration is idempotent.
func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := getName(prefix, topic)
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return err
	}
	_, err := ch.QueueDeclare(
		name,  // name of the queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // noWait
		nil,   // arguments
	)
	return err
}

// getName scopes a topic to its market prefix, e.g. "us_price_lowered".
// Exchange, queue and routing key all share this name.
func getName(prefix string, topic ChangeTopic) string {
	return prefix + "_" + string(topic)
}

// Send publishes one json message to a topic on a short-lived channel, stamped
// with a message id and timestamp.
func Send[V any](ctx context.Context, c *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	name := getName(prefix, topic)
	return ch.PublishWithContext(ctx,
		name, // exchange
		name, // routing key
		true, // mandatory
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}
