package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/redis"
)

// Publisher is the write side of the bus, injected into the services
// that emit events.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
}

// Bus routes published messages through redis so that every API
// instance delivers them to its own local subscribers. Local delivery
// happens from the bridge's subscribe loop, never directly from
// Publish, so a message is handed to each subscriber exactly once.
type Bus struct {
	hub   *Hub
	redis *redis.Client
	log   *logger.Logger
}

func NewBus(hub *Hub, redisClient *redis.Client, log *logger.Logger) *Bus {
	return &Bus{hub: hub, redis: redisClient, log: log}
}

// Publish serializes msg onto the redis channel for topic.
func (b *Bus) Publish(ctx context.Context, topic string, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling bus message: %w", err)
	}
	if err := b.redis.Publish(ctx, b.redis.NotifyChannel(topic), raw); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Subscribe attaches a local subscriber to topic.
func (b *Bus) Subscribe(topic string) *Subscription {
	return b.hub.Subscribe(topic)
}

// Unsubscribe detaches a local subscriber.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.hub.Unsubscribe(sub)
}

// Run consumes the redis pattern subscription and fans incoming
// messages out to local subscribers. It blocks until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) error {
	pubsub := b.redis.PSubscribe(ctx, b.redis.NotifyPattern())
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				b.log.Error(ctx, "dropping malformed bus message", err)
				continue
			}
			b.hub.Deliver(ctx, b.redis.TopicFromChannel(raw.Channel), msg)
		}
	}
}
