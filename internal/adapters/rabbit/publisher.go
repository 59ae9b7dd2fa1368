package rabbit

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange carries every booking lifecycle event, routed by keys like
// booking.confirmed and booking.cancelled.
const Exchange = "booking.events"

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

// Publish sends the event with persistent delivery unless the caller set a
// mode explicitly; booking events must survive a broker restart.
func (p *Publisher) Publish(ctx context.Context, key string, msg amqp.Publishing) error {
	if msg.DeliveryMode == 0 {
		msg.DeliveryMode = amqp.Persistent
	}
	return p.ch.PublishWithContext(ctx, Exchange, key, false, false, msg)
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
