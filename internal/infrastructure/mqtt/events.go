package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// pinEvent is the JSON payload published for every pin event.
type pinEvent struct {
	EventID   string `json:"event_id"`
	Pin       uint16 `json:"pin"`
	Function  uint16 `json:"function,omitempty"`
	Entries   int    `json:"entries,omitempty"`
	Timestamp string `json:"timestamp"`
}

// EventPublisher forwards pin driver events to MQTT.
//
// It implements the driver's Events interface. Callbacks are invoked with
// the driver lock held, so every publish is fire-and-forget: the paho
// client queues the message and the callback returns immediately.
type EventPublisher struct {
	client *Client
	topics Topics
	qos    byte
}

// NewEventPublisher creates an EventPublisher backed by client.
func NewEventPublisher(client *Client) *EventPublisher {
	return &EventPublisher{
		client: client,
		qos:    byte(client.cfg.QoS),
	}
}

// MuxChanged publishes a mux change event.
func (p *EventPublisher) MuxChanged(pin, function uint16) {
	p.publish(p.topics.PinMux(pin), pinEvent{Pin: pin, Function: function})
}

// ConfigApplied publishes a configuration change event.
func (p *EventPublisher) ConfigApplied(pin uint16, numEntries int) {
	p.publish(p.topics.PinConfig(pin), pinEvent{Pin: pin, Entries: numEntries})
}

// PinClaimed publishes a GPIO claim event.
func (p *EventPublisher) PinClaimed(pin, savedFunction uint16) {
	p.publish(p.topics.PinClaim(pin), pinEvent{Pin: pin, Function: savedFunction})
}

// PinReleased publishes a GPIO release event.
func (p *EventPublisher) PinReleased(pin, restoredFunction uint16) {
	p.publish(p.topics.PinRelease(pin), pinEvent{Pin: pin, Function: restoredFunction})
}

func (p *EventPublisher) publish(topic string, ev pinEvent) {
	ev.EventID = uuid.NewString()
	ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)

	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	// Errors are dropped: event delivery is best effort and must never
	// stall a pin operation.
	_ = p.client.PublishAsync(topic, payload, p.qos)
}
