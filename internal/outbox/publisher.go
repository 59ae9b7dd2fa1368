// Package outbox drains NEW outbox rows to RabbitMQ, so booking events are
// published at least once without a dual write on the request path.
package outbox

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/barani-presidio/hotel-booking/internal/adapters/crdb"
	"github.com/barani-presidio/hotel-booking/internal/adapters/rabbit"
	"github.com/barani-presidio/hotel-booking/internal/observability"
)

type Publisher struct {
	repo      *crdb.Repository
	rabbitPub *rabbit.Publisher
	logger    observability.Logger
}

func NewPublisher(repo *crdb.Repository, rabbitPub *rabbit.Publisher, logger observability.Logger) *Publisher {
	return &Publisher{repo: repo, rabbitPub: rabbitPub, logger: logger}
}

func (p *Publisher) Run(ctx context.Context, interval time.Duration, batch int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx, batch)
		}
	}
}

func (p *Publisher) drain(ctx context.Context, batch int) {
	events, err := p.repo.PendingEvents(ctx, batch)
	if err != nil {
		p.logger.WithError(err).Error("failed to fetch outbox events")
		return
	}
	for _, ev := range events {
		msg := amqp.Publishing{
			MessageId:   ev.DedupeKey,
			ContentType: "application/json",
			Body:        ev.Payload,
		}
		if err := p.rabbitPub.Publish(ctx, ev.EventType, msg); err != nil {
			p.logger.WithError(err).WithField("event_id", ev.ID).Error("failed to publish outbox event")
			continue
		}
		observability.OutboxLag.Set(time.Since(ev.CreatedAt).Seconds())
		if err := p.repo.MarkEventPublished(ctx, ev.ID, time.Now()); err != nil {
			p.logger.WithError(err).WithField("event_id", ev.ID).Error("failed to mark outbox event published")
		}
	}
}
