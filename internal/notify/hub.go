// Package notify implements the in-process notification bus and its
// redis bridge. Delivery is at-most-once: a subscriber whose buffer is
// full loses the message rather than blocking the publisher.
package notify

import (
	"context"
	"sync"

	"github.com/servex-app/servex-backend/pkg/logger"
)

const subscriberBuffer = 16

// Subscription is a live attachment to one topic. Messages arrive on C
// until Unsubscribe is called, after which C is closed.
type Subscription struct {
	topic string
	C     chan Message
}

// Hub fans messages out to local subscribers grouped by topic.
// Publishing to a topic with no subscribers is a no-op.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	log    *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		log:    log,
	}
}

// Subscribe attaches a new subscriber to topic.
func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{topic: topic, C: make(chan Message, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Subscription]struct{})
	}
	h.topics[topic][sub] = struct{}{}
	return sub
}

// Unsubscribe detaches sub and closes its channel. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
	close(sub.C)
}

// Deliver hands msg to every local subscriber of topic without blocking.
// Subscribers that cannot keep up drop the message.
func (h *Hub) Deliver(ctx context.Context, topic string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[topic] {
		select {
		case sub.C <- msg:
		default:
			dropCtx := h.log.WithFields(ctx, map[string]any{"topic": topic, "event": msg.Event})
			h.log.Warn(dropCtx, "bus subscriber buffer full, dropping message")
		}
	}
}

// SubscriberCount reports the number of live subscribers on topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
