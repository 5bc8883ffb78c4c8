package notify

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event names carried on the bus. Clients dispatch on Event, not topic.
const (
	EventOrderNew          = "order:new"
	EventOrderStatusUpdate = "order:statusUpdate"
)

// TopicKitchen receives every kitchen-relevant event. Per-order topics
// are built with OrderTopic.
const TopicKitchen = "kitchen"

// OrderTopic names the topic scoped to a single order.
func OrderTopic(orderID uuid.UUID) string {
	return fmt.Sprintf("order:%s", orderID)
}

// Message is the envelope delivered to subscribers and carried across
// the redis bridge between instances.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a bus envelope.
func NewMessage(event string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshaling bus payload: %w", err)
	}
	return Message{Event: event, Payload: raw}, nil
}
