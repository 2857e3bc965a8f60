package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventPublisher pushes serialized events to Redis pub/sub channels.
type EventPublisher struct {
	client *redis.Client
}

// NewEventPublisher constructs a publisher over client.
func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

// Publish sends payload to channel.
func (p *EventPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if p.client == nil {
		return fmt.Errorf("redis publish %s: client not configured", channel)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}
