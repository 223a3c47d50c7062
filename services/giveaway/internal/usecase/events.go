package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ucycle/pkg/queue"
	"ucycle/services/giveaway/internal/entity"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the redis pub/sub channel mirroring the events exchange.
const EventsChannel = "giveaway_events"

// EventPublisher announces lifecycle changes after they are stored.
// Delivery is best effort; callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, entity.Event) error { return nil }

// QueuePublisher routes each event to the RabbitMQ exchange by its type.
type QueuePublisher struct {
	client *queue.Client
}

func NewQueuePublisher(client *queue.Client) *QueuePublisher {
	return &QueuePublisher{client: client}
}

func (p *QueuePublisher) Publish(ctx context.Context, event entity.Event) error {
	return p.client.Publish(ctx, event.Type, event)
}

type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: EventsChannel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event entity.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(ctx, p.channel, body).Err()
}

// MultiPublisher fans an event out to every publisher and joins their errors.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event entity.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
